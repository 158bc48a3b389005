//go:build !linux

package transport

import "errors"

// nativeProbe always fails off Linux; Select falls back to the portable
// backend.
func nativeProbe() error {
	return errors.New("native transport requires linux")
}

func newNativeBackend() Backend { return portableBackend{} }
