package server

// Listener receives the outcome of a Start or Stop call. Exactly one of
// the two callbacks fires per call, on the goroutine performing the
// operation - not necessarily the caller's.
type Listener interface {
	// OnSuccess reports the bound (for Start) or released (for Stop)
	// listening port.
	OnSuccess(port int)

	// OnFailure reports why the operation failed.
	OnFailure(err error)
}

// Callbacks adapts plain functions to Listener. Nil functions are no-ops.
type Callbacks struct {
	Success func(port int)
	Failure func(err error)
}

func (c Callbacks) OnSuccess(port int) {
	if c.Success != nil {
		c.Success(port)
	}
}

func (c Callbacks) OnFailure(err error) {
	if c.Failure != nil {
		c.Failure(err)
	}
}

// notifySuccess and notifyFailure tolerate a nil listener, as internal
// teardown paths stop the server without an observer.
func notifySuccess(l Listener, port int) {
	if l != nil {
		l.OnSuccess(port)
	}
}

func notifyFailure(l Listener, err error) {
	if l != nil {
		l.OnFailure(err)
	}
}
