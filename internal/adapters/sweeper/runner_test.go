package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fixwave/fixwave-api/internal/mocks"
	mocksauth "github.com/fixwave/fixwave-api/internal/mocks/auth"
	"github.com/fixwave/fixwave-api/internal/service"
	"github.com/fixwave/fixwave-api/internal/testutil"
)

func newTestRegistry(t *testing.T) *service.MonitorRegistry {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	return service.NewMonitorRegistry(service.MonitorRegistryOptions{
		Backends: service.StateManagerBackends{
			Sessions:  mocksauth.NewMemorySessionStore(),
			Directory: mocksauth.NewMemoryDirectory(),
			Profiles:  mocks.NewMockProfileRepository(ctrl),
		},
		Polling: service.PollerOptions{Scheduler: testutil.NewFakeScheduler()},
	})
}

func TestNewRunner_RequiresRegistry(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(RunnerOptions{})
	assert.Error(t, err)
}

func TestNewRunner_Defaults(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(RunnerOptions{Registry: newTestRegistry(t)})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, r.interval)
	assert.Equal(t, 30*time.Minute, r.idleTTL)
}

func TestRunner_SweepRemovesIdleMonitors(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)
	registry.Acquire(context.Background(), "sess-1")
	require.Equal(t, 1, registry.Len())

	// Give the manager's last access time a chance to fall behind the cutoff.
	time.Sleep(5 * time.Millisecond)

	r, err := NewRunner(RunnerOptions{
		Registry: registry,
		Interval: time.Minute,
		IdleTTL:  time.Nanosecond,
	})
	require.NoError(t, err)

	r.sweep(context.Background())
	assert.Equal(t, 0, registry.Len())
}

func TestRunner_SweepKeepsActiveMonitors(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)
	registry.Acquire(context.Background(), "sess-1")

	r, err := NewRunner(RunnerOptions{
		Registry: registry,
		IdleTTL:  time.Hour,
	})
	require.NoError(t, err)

	r.sweep(context.Background())
	assert.Equal(t, 1, registry.Len())
}

func TestRunner_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(RunnerOptions{
		Registry: newTestRegistry(t),
		Interval: 10 * time.Millisecond,
		IdleTTL:  time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
