package logger

import "log/slog"

// Standard field keys for structured logging. Use these consistently so
// logs from the acceptor group, worker group, and connections can be
// aggregated and queried together.
const (
	// Server lifecycle
	KeyPort      = "port"
	KeyState     = "state"
	KeyTransport = "transport"

	// Reactor groups and loops
	KeyGroup      = "group"
	KeyLoop       = "loop"
	KeyLoops      = "loops"
	KeyIORate     = "io_rate"
	KeyQueueDepth = "queue_depth"

	// Connections
	KeyConnID     = "conn_id"
	KeyRemoteAddr = "remote_addr"
	KeyLocalAddr  = "local_addr"
	KeyActive     = "active"

	// Frames
	KeyFrameSize = "frame_size"
	KeyBytes     = "bytes"

	// Operation metadata
	KeyError      = "error"
	KeyDurationMs = "duration_ms"
)

// Port returns a slog.Attr for the listening port.
func Port(p int) slog.Attr {
	return slog.Int(KeyPort, p)
}

// Group returns a slog.Attr for a reactor group name.
func Group(name string) slog.Attr {
	return slog.String(KeyGroup, name)
}

// Loop returns a slog.Attr for a reactor loop name.
func Loop(name string) slog.Attr {
	return slog.String(KeyLoop, name)
}

// ConnID returns a slog.Attr for a connection identifier.
func ConnID(id uint64) slog.Attr {
	return slog.Uint64(KeyConnID, id)
}

// RemoteAddr returns a slog.Attr for a connection's remote address.
func RemoteAddr(addr string) slog.Attr {
	return slog.String(KeyRemoteAddr, addr)
}

// Transport returns a slog.Attr for the selected transport backend.
func Transport(name string) slog.Attr {
	return slog.String(KeyTransport, name)
}

// Err returns a slog.Attr for an error. Returns the zero Attr for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
