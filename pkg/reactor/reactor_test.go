package reactor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupSizing(t *testing.T) {
	t.Run("ExplicitSize", func(t *testing.T) {
		g := NewGroup("worker", 3, 70, nil)
		defer g.Shutdown()
		assert.Equal(t, 3, g.Size())
	})

	t.Run("ZeroMeansDefaultSizing", func(t *testing.T) {
		g := NewGroup("worker", 0, 70, nil)
		defer g.Shutdown()
		assert.Greater(t, g.Size(), 0)
	})

	t.Run("LoopNames", func(t *testing.T) {
		g := NewGroup("boss", 2, 100, nil)
		defer g.Shutdown()
		assert.Equal(t, "boss-0", g.Next().Name())
		assert.Equal(t, "boss-1", g.Next().Name())
	})
}

func TestRoundRobin(t *testing.T) {
	g := NewGroup("worker", 4, 70, nil)
	defer g.Shutdown()

	seen := make(map[string]int)
	for i := 0; i < 40; i++ {
		seen[g.Next().Name()]++
	}
	require.Len(t, seen, 4)
	for name, count := range seen {
		assert.Equal(t, 10, count, "loop %s", name)
	}
}

func TestTaskExecution(t *testing.T) {
	g := NewGroup("worker", 2, 70, nil)
	defer g.Shutdown()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, g.Next().Post(func() {
			count.Add(1)
			wg.Done()
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(100), count.Load())
}

func TestPerLoopOrdering(t *testing.T) {
	g := NewGroup("worker", 1, 70, nil)
	defer g.Shutdown()

	loop := g.Next()
	var got []int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		require.NoError(t, loop.PostIO(func() {
			got = append(got, i) // safe: single loop goroutine
			wg.Done()
		}))
	}
	wg.Wait()

	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestAcceptorGroupRejectsTasks(t *testing.T) {
	g := NewGroup("boss", 1, 100, nil)
	defer g.Shutdown()

	err := g.Next().Post(func() {})
	assert.ErrorIs(t, err, ErrTasksDisabled)

	// Readiness work is still accepted.
	done := make(chan struct{})
	require.NoError(t, g.Next().PostIO(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("io work never ran")
	}
}

func TestShutdown(t *testing.T) {
	t.Run("DrainsQueuedWork", func(t *testing.T) {
		g := NewGroup("worker", 1, 70, nil)

		var count atomic.Int32
		for i := 0; i < 200; i++ {
			require.NoError(t, g.Next().Post(func() { count.Add(1) }))
		}
		g.Shutdown()
		assert.Equal(t, int32(200), count.Load())
	})

	t.Run("RejectsWorkAfterShutdown", func(t *testing.T) {
		g := NewGroup("worker", 1, 70, nil)
		g.Shutdown()

		assert.ErrorIs(t, g.Next().Post(func() {}), ErrStopped)
		assert.ErrorIs(t, g.Next().PostIO(func() {}), ErrStopped)
	})

	t.Run("Idempotent", func(t *testing.T) {
		g := NewGroup("worker", 2, 70, nil)
		g.Shutdown()
		assert.NotPanics(t, func() { g.Shutdown() })
	})

	t.Run("ConcurrentCallersAllBlockUntilQuiesced", func(t *testing.T) {
		g := NewGroup("worker", 2, 70, nil)

		release := make(chan struct{})
		require.NoError(t, g.Next().Post(func() { <-release }))

		var wg sync.WaitGroup
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				g.Shutdown()
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()
	})
}

func TestPanicRecovery(t *testing.T) {
	g := NewGroup("worker", 1, 70, nil)
	defer g.Shutdown()

	loop := g.Next()
	require.NoError(t, loop.Post(func() { panic("handler blew up") }))

	// The loop must survive and keep executing work.
	done := make(chan struct{})
	require.NoError(t, loop.Post(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop died after panic")
	}
}
