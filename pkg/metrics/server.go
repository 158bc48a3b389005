package metrics

// ServerMetrics provides observability for server, reactor group, and
// connection lifecycle events.
//
// This interface is optional - pass nil to disable metrics collection
// with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewServerMetrics()
//	srv, err := server.New(cfg, handlerFactory, server.WithMetrics(m))
//
//	// Without metrics (pass nil for zero overhead)
//	srv, err := server.New(cfg, handlerFactory)
type ServerMetrics interface {
	// RecordBind records the outcome of a bind attempt ("success" or
	// "failure") for the given transport backend name.
	RecordBind(transport string, outcome string)

	// RecordConnectionAccepted increments the accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the closed connections counter.
	RecordConnectionClosed()

	// RecordConnectionForceClosed counts connections closed forcibly after
	// the shutdown grace period expired.
	RecordConnectionForceClosed()

	// SetActiveConnections updates the current connection gauge.
	SetActiveConnections(count int32)

	// RecordFrame records a decoded or encoded frame and its payload size.
	// Direction is "in" or "out".
	RecordFrame(direction string, bytes int)

	// RecordLoopTask counts a task executed by a reactor loop, labeled by
	// group name ("boss", "worker") and kind ("io", "task").
	RecordLoopTask(group string, kind string)

	// SetLoopQueueDepth updates the queued-work gauge for one loop.
	SetLoopQueueDepth(loop string, depth int)
}
