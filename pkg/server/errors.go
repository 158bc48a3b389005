package server

import (
	"errors"
	"fmt"
)

// Lifecycle misuse errors. These indicate programming errors in the host
// application, not transient conditions, and are raised synchronously.
var (
	// ErrAlreadyInitialized is returned by Init on any server that has
	// left the Created state.
	ErrAlreadyInitialized = errors.New("server: already initialized")

	// ErrAlreadyStarted is returned by Start on a server that is not in
	// the Initialized state, covering both "already started" and "never
	// initialized".
	ErrAlreadyStarted = errors.New("server: already started or not initialized")

	// ErrAlreadyShutdown is returned by Stop on a server that is not in
	// the Started state. The losing caller's listener receives it too;
	// no teardown is performed.
	ErrAlreadyShutdown = errors.New("server: already shutdown")
)

// BindError reports a failed bind of the listening port. It is returned
// from Start and also delivered to the start listener's OnFailure.
type BindError struct {
	Port  int
	Cause error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("server: bind on port %d failed: %v", e.Port, e.Cause)
}

func (e *BindError) Unwrap() error { return e.Cause }

// StartupError wraps any other failure during group construction or
// bootstrap. Whatever reactor groups were partially constructed have
// been torn down by the time it is returned.
type StartupError struct {
	Cause error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("server: startup failed: %v", e.Cause)
}

func (e *StartupError) Unwrap() error { return e.Cause }
