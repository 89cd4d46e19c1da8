package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type DB interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	Close() error
	DriverName() string
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	PingContext(ctx context.Context) error
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Stats() sql.DBStats
	SQL() *sql.DB
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error)
}

type DatabaseInstance struct {
	*sqlx.DB
	logger ectologger.Logger
}

func NewDatabaseInstance(db *sqlx.DB, logger ectologger.Logger) DB {
	return &DatabaseInstance{
		DB:     db,
		logger: logger,
	}
}

func (db *DatabaseInstance) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error) {
	return GetTx(ctx, db.logger, db, opts)
}

// SQL exposes the underlying *sql.DB for drivers that need it (migrations).
func (db *DatabaseInstance) SQL() *sql.DB {
	return db.DB.DB
}

// Config holds connection settings for Open.
type Config struct {
	Driver          string
	Host            string
	Port            string
	UserName        string
	Password        string
	Name            string
	SSLMode         string
	RetryCount      int
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds a postgres:// connection URL. Credentials and the database name
// are escaped, so they may contain spaces, quotes or URL delimiters.
func (c Config) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.UserName, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return dsn.String()
}

// Open connects to the database, retrying RetryCount times before giving up.
func Open(ctx context.Context, cfg Config, logger ectologger.Logger) (DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	attempts := cfg.RetryCount
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err = sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
		if err == nil {
			break
		}

		logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host":    cfg.Host,
			"db_name": cfg.Name,
			"attempt": attempt,
		}).Warn("Failed to connect to database")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s after %d attempts: %w", cfg.Name, attempts, err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.WithContext(ctx).WithFields(map[string]any{
		"host":    cfg.Host,
		"db_name": cfg.Name,
	}).Info("Connected to database")

	return NewDatabaseInstance(conn, logger), nil
}
