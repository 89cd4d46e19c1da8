// Package app wires configuration, infrastructure and services together for
// the server and the command line.
package app

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/dahlia/config"
	analyticsrepo "github.com/Ramsey-B/dahlia/internal/repositories/analytics"
	ingestionrepo "github.com/Ramsey-B/dahlia/internal/repositories/ingestion"
	"github.com/Ramsey-B/dahlia/internal/services/analytics"
	"github.com/Ramsey-B/dahlia/internal/services/ingestion"
	"github.com/Ramsey-B/dahlia/pkg/cache"
	"github.com/Ramsey-B/dahlia/pkg/csvsource"
	"github.com/Ramsey-B/dahlia/pkg/database"
	"github.com/Ramsey-B/dahlia/pkg/events"
	"github.com/Ramsey-B/dahlia/pkg/httpclient"
	"github.com/Ramsey-B/dahlia/pkg/redis"
	"github.com/Ramsey-B/dahlia/pkg/startup"
)

// Options changes how the application is assembled.
type Options struct {
	// Migrate applies pending migrations once the database is reachable.
	Migrate bool
	// AllowLocalFiles lets ingestion read file:// references and bare paths.
	AllowLocalFiles bool
}

type App struct {
	Config    *config.Config
	Logger    ectologger.Logger
	DB        database.DB
	Redis     *redis.Client
	Cache     cache.ReportCache
	Publisher events.Publisher

	Ingestion *ingestion.Service
	Analytics *analytics.Service

	options Options
	startup *startup.Startup
}

func New(cfg *config.Config, logger ectologger.Logger, opts Options) *App {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		options: opts,
		startup: startup.NewStartup(logger, cfg.StartupMaxAttempts),
	}

	if cfg.TracingEnabled {
		a.startup.AddDependency(&tracingDependency{app: a})
	}
	a.startup.AddDependency(&databaseDependency{app: a, migrate: opts.Migrate})
	if cfg.RedisEnabled {
		a.startup.AddDependency(&redisDependency{app: a})
	}
	if cfg.KafkaEnabled {
		a.startup.AddDependency(&eventsDependency{app: a})
	}

	return a
}

// Start brings up every enabled dependency and builds the services on top
// of them.
func (a *App) Start(ctx context.Context) error {
	if err := a.startup.Start(ctx); err != nil {
		return err
	}

	a.Cache = cache.Noop{}
	if a.Redis != nil {
		a.Cache = cache.NewRedisCache(a.Redis, a.Config.AppName, a.Config.ReportCacheTTL, a.Logger)
	}

	var publisher events.Publisher = events.Noop{}
	if a.Publisher != nil {
		publisher = a.Publisher
	}

	var fileFetcher csvsource.Fetcher
	if a.options.AllowLocalFiles {
		fileFetcher = csvsource.FileFetcher{}
	}
	client := httpclient.NewClient(httpclient.Config{
		Timeout:         a.Config.FetchTimeout,
		MaxResponseSize: a.Config.FetchMaxBytes,
		MaxIdleConns:    httpclient.DefaultConfig().MaxIdleConns,
		IdleConnTimeout: httpclient.DefaultConfig().IdleConnTimeout,
	}, a.Logger)
	source := csvsource.NewSource(csvsource.NewHTTPFetcher(client), fileFetcher, a.Logger)

	a.Ingestion = ingestion.NewService(a.Logger, source, ingestionrepo.NewRepository(a.DB, a.Logger), a.Cache, publisher)
	a.Analytics = analytics.NewService(a.Logger, analyticsrepo.NewRepository(a.DB, a.Logger), a.Cache)

	return nil
}

// Stop releases dependencies in reverse start order.
func (a *App) Stop(ctx context.Context) error {
	return a.startup.Stop(ctx)
}
