package app

import (
	"context"

	"github.com/Ramsey-B/dahlia/config"
	"github.com/Ramsey-B/dahlia/pkg/database"
	"github.com/Ramsey-B/dahlia/pkg/events"
	"github.com/Ramsey-B/dahlia/pkg/redis"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
)

const (
	dependencyTracing  = "tracing"
	dependencyDatabase = "database"
	dependencyRedis    = "redis"
	dependencyEvents   = "events"
)

// DatabaseConfig maps the service config onto connection settings.
func DatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		RetryCount:      cfg.DatabaseReconnectRetryCount,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}
}

func MigrationConfig(cfg *config.Config) *database.MigrationConfig {
	return &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             cfg.DatabaseMigrationVersion,
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	}
}

type tracingDependency struct {
	app      *App
	shutdown func(context.Context) error
}

func (d *tracingDependency) GetName() string     { return dependencyTracing }
func (d *tracingDependency) DependsOn() []string { return nil }

func (d *tracingDependency) Start(ctx context.Context) error {
	cfg := d.app.Config
	shutdown, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:  cfg.AppName,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPProtocol: cfg.OTLPProtocol,
		OTLPInsecure: cfg.OTLPInsecure,
	}, d.app.Logger)
	if err != nil {
		return err
	}
	d.shutdown = shutdown
	return nil
}

func (d *tracingDependency) Stop(ctx context.Context) error {
	if d.shutdown == nil {
		return nil
	}
	return d.shutdown(ctx)
}

type databaseDependency struct {
	app     *App
	migrate bool
}

func (d *databaseDependency) GetName() string     { return dependencyDatabase }
func (d *databaseDependency) DependsOn() []string { return nil }

func (d *databaseDependency) Start(ctx context.Context) error {
	if d.app.DB == nil {
		db, err := database.Open(ctx, DatabaseConfig(d.app.Config), d.app.Logger)
		if err != nil {
			return err
		}
		d.app.DB = db
	}

	if !d.migrate {
		return nil
	}
	migrations := database.NewMigrationService(d.app.Logger, MigrationConfig(d.app.Config))
	return migrations.Migrate(d.app.Config.DatabaseName, d.app.DB)
}

func (d *databaseDependency) Stop(ctx context.Context) error {
	if d.app.DB == nil {
		return nil
	}
	err := d.app.DB.Close()
	d.app.DB = nil
	return err
}

type redisDependency struct {
	app *App
}

func (d *redisDependency) GetName() string     { return dependencyRedis }
func (d *redisDependency) DependsOn() []string { return nil }

func (d *redisDependency) Start(ctx context.Context) error {
	if d.app.Redis == nil {
		cfg := d.app.Config
		d.app.Redis = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, d.app.Logger)
	}
	return d.app.Redis.Connect(ctx)
}

func (d *redisDependency) Stop(ctx context.Context) error {
	if d.app.Redis == nil {
		return nil
	}
	err := d.app.Redis.Close()
	d.app.Redis = nil
	return err
}

type eventsDependency struct {
	app *App
}

func (d *eventsDependency) GetName() string     { return dependencyEvents }
func (d *eventsDependency) DependsOn() []string { return nil }

func (d *eventsDependency) Start(ctx context.Context) error {
	if d.app.Publisher == nil {
		d.app.Publisher = events.NewKafkaPublisher(events.Config{
			Brokers: d.app.Config.KafkaBrokers,
			Topic:   d.app.Config.KafkaTopic,
		}, d.app.Logger)
	}
	return nil
}

func (d *eventsDependency) Stop(ctx context.Context) error {
	if d.app.Publisher == nil {
		return nil
	}
	err := d.app.Publisher.Close()
	d.app.Publisher = nil
	return err
}
