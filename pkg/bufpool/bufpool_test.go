package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Run("SmallClass", func(t *testing.T) {
		buf := Get(100)
		defer Put(buf)

		assert.Equal(t, 100, len(buf))
		assert.Equal(t, DefaultSmallSize, cap(buf))
	})

	t.Run("MediumClass", func(t *testing.T) {
		buf := Get(10 * 1024)
		defer Put(buf)

		assert.Equal(t, 10*1024, len(buf))
		assert.Equal(t, DefaultMediumSize, cap(buf))
	})

	t.Run("LargeClass", func(t *testing.T) {
		buf := Get(100 * 1024)
		defer Put(buf)

		assert.Equal(t, 100*1024, len(buf))
		assert.Equal(t, DefaultLargeSize, cap(buf))
	})

	t.Run("OversizedAllocatedDirectly", func(t *testing.T) {
		buf := Get(2 * 1024 * 1024)
		defer Put(buf)

		assert.Equal(t, 2*1024*1024, len(buf))
		assert.Equal(t, len(buf), cap(buf))
	})

	t.Run("ClassBoundaryStaysInClass", func(t *testing.T) {
		buf := Get(DefaultSmallSize)
		defer Put(buf)

		assert.Equal(t, DefaultSmallSize, cap(buf))
	})
}

func TestPut(t *testing.T) {
	t.Run("NilIsIgnored", func(t *testing.T) {
		assert.NotPanics(t, func() { Put(nil) })
	})

	t.Run("ReusesReturnedBuffer", func(t *testing.T) {
		p := NewPool(nil)

		buf := p.Get(64)
		buf[0] = 0xAB
		p.Put(buf)

		// sync.Pool gives no reuse guarantee, but the returned buffer
		// must at least be a valid member of the same class.
		again := p.Get(64)
		defer p.Put(again)
		assert.Equal(t, DefaultSmallSize, cap(again))
	})
}

func TestCustomConfig(t *testing.T) {
	p := NewPool(&Config{SmallSize: 512, MediumSize: 4096, LargeSize: 65536})

	buf := p.Get(256)
	require.Equal(t, 512, cap(buf))
	p.Put(buf)

	buf = p.Get(2048)
	require.Equal(t, 4096, cap(buf))
	p.Put(buf)

	buf = p.Get(100000)
	require.Equal(t, 100000, cap(buf))
	p.Put(buf)
}

func TestConcurrentAccess(t *testing.T) {
	p := NewPool(nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				buf := p.Get(j * 97 % (DefaultLargeSize + 1))
				for k := range buf {
					buf[k] = byte(j)
				}
				p.Put(buf)
			}
		}()
	}
	wg.Wait()
}
