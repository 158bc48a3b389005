//go:build !linux && !darwin

package logger

// isTerminal reports whether fd refers to a terminal. Color output is
// disabled on platforms without termios support.
func isTerminal(uintptr) bool {
	return false
}
