package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Ramsey-B/dahlia/pkg/health"
	"github.com/Ramsey-B/dahlia/pkg/middleware"
	"github.com/Ramsey-B/dahlia/pkg/routes/dataloader"
	"github.com/Ramsey-B/dahlia/pkg/routes/visualizer"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

const shutdownTimeout = 30 * time.Second

// NewServer builds the echo instance with middleware and every route.
func (a *App) NewServer() (*echo.Echo, *health.Checker) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(a.Logger)

	e.Use(echomiddleware.Recover())
	e.Use(otelecho.Middleware(a.Config.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(a.Logger))
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.BodyLimit(a.Config.MaxBodyBytes))

	var checker *health.Checker
	if a.Redis != nil {
		checker = health.NewChecker(a.DB, a.Redis.Redis(), a.Config.Version)
	} else {
		checker = health.NewChecker(a.DB, nil, a.Config.Version)
	}
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	dataloader.NewHandler(a.Ingestion).RegisterRoutes(e.Group("/data_loader"))
	visualizer.NewHandler(a.Analytics).RegisterRoutes(e.Group("/visualizer"))

	return e, checker
}

// Serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests.
func (a *App) Serve(ctx context.Context) error {
	e, checker := a.NewServer()

	e.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Port),
		Handler:           e,
		ReadTimeout:       time.Duration(a.Config.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(a.Config.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(a.Config.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(a.Config.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    a.Config.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Infof("Starting %s on port %d", a.Config.AppName, a.Config.Port)
		if err := e.StartServer(e.Server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	checker.SetReady(true)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	checker.SetReady(false)
	a.Logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.Logger.WithError(err).Error("Server forced to shutdown")
		return err
	}
	return <-errCh
}
