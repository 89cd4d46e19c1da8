package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "dahlia", cfg.AppName)
		assert.Equal(t, "db/pg", cfg.DatabaseMigrationFolderPath)
		assert.Equal(t, 5*time.Minute, cfg.ReportCacheTTL)
		assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
		assert.False(t, cfg.RedisEnabled)
	})

	t.Run("should read values from the environment", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("FETCH_TIMEOUT", "5s")
		t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	})

	t.Run("should read a dotenv file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("DB_NAME=orders_test\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("DB_NAME") })

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "orders_test", cfg.DatabaseName)
	})
}
