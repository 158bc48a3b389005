package transport

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	t.Run("PortableWhenNotPreferred", func(t *testing.T) {
		backend := Select(false)
		assert.Equal(t, "portable", backend.Name())
	})

	t.Run("AlwaysReturnsABackend", func(t *testing.T) {
		backend := Select(true)
		require.NotNil(t, backend)
	})

	t.Run("FallsBackWhenProbeFails", func(t *testing.T) {
		original := probeNative
		probeNative = func() error { return errors.New("probe failed") }
		defer func() { probeNative = original }()

		backend := Select(true)
		assert.Equal(t, "portable", backend.Name())
	})
}

func TestListen(t *testing.T) {
	for _, preferNative := range []bool{false, true} {
		backend := Select(preferNative)

		ln, err := backend.Listen("127.0.0.1:0")
		require.NoError(t, err, "backend %s must bind", backend.Name())

		addr, ok := ln.Addr().(*net.TCPAddr)
		require.True(t, ok)
		assert.NotZero(t, addr.Port)
		require.NoError(t, ln.Close())
	}
}

func TestListenFailsOnBoundPort(t *testing.T) {
	backend := Select(false)

	ln, err := backend.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = backend.Listen(ln.Addr().String())
	assert.Error(t, err)
}
