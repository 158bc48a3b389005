package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "Created", StateCreated.String())
	assert.Equal(t, "Initialized", StateInitialized.String())
	assert.Equal(t, "Starting", StateStarting.String())
	assert.Equal(t, "Started", StateStarted.String())
	assert.Equal(t, "Shutdown", StateShutdown.String())
	assert.Equal(t, "Unknown", State(99).String())
}

func TestStateMachineTransitions(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		var m stateMachine
		require.True(t, m.is(StateCreated))

		require.True(t, m.compareAndSwap(StateCreated, StateInitialized))
		require.True(t, m.compareAndSwap(StateInitialized, StateStarting))
		require.True(t, m.compareAndSwap(StateStarting, StateStarted))
		require.True(t, m.compareAndSwap(StateStarted, StateShutdown))
		assert.Equal(t, StateShutdown, m.current())
	})

	t.Run("failed swap leaves state untouched", func(t *testing.T) {
		var m stateMachine
		require.False(t, m.compareAndSwap(StateInitialized, StateStarting))
		assert.Equal(t, StateCreated, m.current())
	})

	t.Run("no transition back", func(t *testing.T) {
		var m stateMachine
		require.True(t, m.compareAndSwap(StateCreated, StateInitialized))
		require.False(t, m.compareAndSwap(StateCreated, StateInitialized))
		assert.Equal(t, StateInitialized, m.current())
	})

	t.Run("only one concurrent winner", func(t *testing.T) {
		var m stateMachine
		require.True(t, m.compareAndSwap(StateCreated, StateInitialized))

		wins := make(chan bool, 8)
		for i := 0; i < 8; i++ {
			go func() { wins <- m.compareAndSwap(StateInitialized, StateStarting) }()
		}
		won := 0
		for i := 0; i < 8; i++ {
			if <-wins {
				won++
			}
		}
		assert.Equal(t, 1, won)
	})
}
