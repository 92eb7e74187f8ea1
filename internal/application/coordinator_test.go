package application

import (
	"sync"
	"testing"
	"time"

	"github.com/bnema/shipscan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorSharesOneSessionPerPair(t *testing.T) {
	t.Parallel()

	coord := NewSessionCoordinator(GuardConfig{}, newFixedClock())

	a := coord.GetOrCreate("actor-1", "shp-1")
	b := coord.GetOrCreate("actor-1", "shp-1")
	assert.Same(t, a, b)

	other := coord.GetOrCreate("actor-2", "shp-1")
	assert.NotSame(t, a, other)
	otherShipment := coord.GetOrCreate("actor-1", "shp-2")
	assert.NotSame(t, a, otherShipment)
}

func TestCoordinatorConcurrentGetOrCreateSingleWinner(t *testing.T) {
	t.Parallel()

	coord := NewSessionCoordinator(GuardConfig{}, newFixedClock())

	const workers = 32
	handles := make([]*SessionHandle, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = coord.GetOrCreate("actor", "shp")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, handles[0], handles[i])
	}
	assert.Len(t, coord.Active(), 1)
}

func TestCoordinatorDropForgetsOnlyThatPair(t *testing.T) {
	t.Parallel()

	coord := NewSessionCoordinator(GuardConfig{}, newFixedClock())

	first := coord.GetOrCreate("actor", "shp-1")
	coord.GetOrCreate("actor", "shp-2")

	coord.Drop("actor", "shp-1")

	_, ok := coord.Lookup("actor", "shp-1")
	assert.False(t, ok)
	_, ok = coord.Lookup("actor", "shp-2")
	assert.True(t, ok)

	recreated := coord.GetOrCreate("actor", "shp-1")
	assert.NotSame(t, first, recreated)
}

func TestCoordinatorLastActivityStamping(t *testing.T) {
	t.Parallel()

	clock := newFixedClock()
	coord := NewSessionCoordinator(GuardConfig{}, clock)

	handle := coord.GetOrCreate("actor", "shp")
	created := handle.LastActivity()

	clock.Advance(time.Minute)
	handle.Session(clock.Now(), func(_ *domain.ScanSession, _ *domain.DuplicateGuard) {})

	assert.Equal(t, created.Add(time.Minute), handle.LastActivity())
}

func TestCoordinatorDropIdleKeepsTerminalAndFreshSessions(t *testing.T) {
	t.Parallel()

	clock := newFixedClock()
	coord := NewSessionCoordinator(GuardConfig{}, clock)

	stale := coord.GetOrCreate("actor", "stale")
	_ = stale

	terminal := coord.GetOrCreate("actor", "done")
	terminal.Session(clock.Now(), func(s *domain.ScanSession, _ *domain.DuplicateGuard) {
		require.NoError(t, s.StartLoading())
		require.NoError(t, s.FinishLoading(domain.ShipmentReference{ID: "done"}))
	})

	clock.Advance(time.Hour)
	fresh := coord.GetOrCreate("actor", "fresh")
	_ = fresh

	dropped := coord.DropIdle(30 * time.Minute)
	assert.Equal(t, 1, dropped)

	_, ok := coord.Lookup("actor", "stale")
	assert.False(t, ok)
	_, ok = coord.Lookup("actor", "done")
	assert.True(t, ok)
	_, ok = coord.Lookup("actor", "fresh")
	assert.True(t, ok)

	assert.Zero(t, coord.DropIdle(0))
}
