// Package testutil starts disposable infrastructure for integration tests.
package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/dahlia/pkg/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	postgresUser     = "user"
	postgresPassword = "password"
	postgresDB       = "dahlia"
)

func Logger() ectologger.Logger {
	return zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
}

// MigrationFolder resolves db/pg from the repository root.
func MigrationFolder() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "db", "pg")
}

// StartPostgres runs a migrated PostgreSQL container for the test and
// returns a connection to it. It skips under -short.
func StartPostgres(t *testing.T) database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       postgresDB,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	logger := Logger()
	db, err := database.Open(ctx, database.Config{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Port(),
		UserName:     postgresUser,
		Password:     postgresPassword,
		Name:         postgresDB,
		SSLMode:      "disable",
		RetryCount:   3,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	migrations := database.NewMigrationService(logger, &database.MigrationConfig{MigrationFolderPath: MigrationFolder()})
	require.NoError(t, migrations.Migrate(postgresDB, db))

	return db
}
