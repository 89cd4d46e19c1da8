package startup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	events []string
}

type dependency struct {
	name      string
	dependsOn []string
	failures  int
	rec       *recorder
}

func (d *dependency) GetName() string     { return d.name }
func (d *dependency) DependsOn() []string { return d.dependsOn }

func (d *dependency) Start(ctx context.Context) error {
	if d.failures > 0 {
		d.failures--
		return errors.New("not ready")
	}
	d.rec.events = append(d.rec.events, "start:"+d.name)
	return nil
}

func (d *dependency) Stop(ctx context.Context) error {
	d.rec.events = append(d.rec.events, "stop:"+d.name)
	return nil
}

func newTestStartup(maxAttempts int) *Startup {
	s := NewStartup(zapadapter.NewZapEctoLogger(zap.NewNop(), nil), maxAttempts)
	s.backoffUnit = time.Millisecond
	return s
}

func TestStartup(t *testing.T) {
	t.Run("should start dependencies first and stop in reverse", func(t *testing.T) {
		rec := &recorder{}
		s := newTestStartup(1)
		s.AddDependency(&dependency{name: "server", dependsOn: []string{"database"}, rec: rec})
		s.AddDependency(&dependency{name: "database", rec: rec})

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Stop(context.Background()))

		assert.Equal(t, []string{"start:database", "start:server", "stop:server", "stop:database"}, rec.events)
		assert.Equal(t, StartupStatusStopped, s.Status("database"))
	})

	t.Run("should retry until a dependency starts", func(t *testing.T) {
		rec := &recorder{}
		s := newTestStartup(3)
		s.AddDependency(&dependency{name: "database", failures: 2, rec: rec})

		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, StartupStatusStarted, s.Status("database"))
	})

	t.Run("should give up after the last attempt", func(t *testing.T) {
		s := newTestStartup(2)
		s.AddDependency(&dependency{name: "database", failures: 5, rec: &recorder{}})

		err := s.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "startup failed after 2 attempts")
		assert.Equal(t, StartupStatusFailed, s.Status("database"))
	})

	t.Run("should reject unknown dependencies", func(t *testing.T) {
		s := newTestStartup(1)
		s.AddDependency(&dependency{name: "server", dependsOn: []string{"cache"}, rec: &recorder{}})

		assert.Error(t, s.Start(context.Background()))
	})
}
