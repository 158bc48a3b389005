package server

import "sync/atomic"

// State is the server's operational state.
//
// State transitions (all via atomic compare-and-swap):
//
//	Created ──Init()──→ Initialized ──Start()──→ Starting ──bind ok──→ Started ──Stop()──→ Shutdown
//
// There is no transition back to Created or Initialized: a Server is
// single-use for its full life. Any other attempted transition fails
// without mutating state.
type State int32

const (
	StateCreated State = iota
	StateInitialized
	StateStarting
	StateStarted
	StateShutdown
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateInitialized:
		return "Initialized"
	case StateStarting:
		return "Starting"
	case StateStarted:
		return "Started"
	case StateShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// stateMachine holds the state and exposes only transition operations,
// never raw mutation. Transitions are linearizable: no two goroutines
// can simultaneously succeed at the same transition.
type stateMachine struct {
	v atomic.Int32
}

// compareAndSwap transitions from expected to next. Returns false, with
// no state change, if the current state is not expected.
func (m *stateMachine) compareAndSwap(expected, next State) bool {
	return m.v.CompareAndSwap(int32(expected), int32(next))
}

// current returns the current state.
func (m *stateMachine) current() State {
	return State(m.v.Load())
}

// is reports whether the current state equals s.
func (m *stateMachine) is(s State) bool {
	return m.current() == s
}
