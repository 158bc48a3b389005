// Package bufpool provides a tiered buffer pool for frame payloads.
//
// Every accepted connection decodes frames into buffers drawn from a
// shared pool instead of allocating per message, which removes most GC
// pressure from the hot read path. The pool is attached to the listening
// channel and every accepted connection by the server bootstrap.
//
// Buffers come in three size classes; requests larger than the biggest
// class are allocated directly and never pooled, so an occasional huge
// frame does not pin memory.
//
// All operations are safe for concurrent use from every worker loop.
package bufpool

import "sync"

// Default size classes. Small covers typical control frames, medium
// covers bulk messages, large covers near-max-frame payloads.
const (
	DefaultSmallSize  = 2 << 10  // 2KB
	DefaultMediumSize = 32 << 10 // 32KB
	DefaultLargeSize  = 1 << 20  // 1MB
)

// Pool manages byte-slice pools organized by size class.
type Pool struct {
	classes [3]sizeClass
}

type sizeClass struct {
	size int
	pool sync.Pool
}

// Config holds size-class overrides for a custom pool. Zero values fall
// back to the defaults.
type Config struct {
	SmallSize  int
	MediumSize int
	LargeSize  int
}

// NewPool creates a buffer pool with the given configuration. A nil
// config uses the default size classes.
func NewPool(cfg *Config) *Pool {
	sizes := [3]int{DefaultSmallSize, DefaultMediumSize, DefaultLargeSize}
	if cfg != nil {
		if cfg.SmallSize > 0 {
			sizes[0] = cfg.SmallSize
		}
		if cfg.MediumSize > 0 {
			sizes[1] = cfg.MediumSize
		}
		if cfg.LargeSize > 0 {
			sizes[2] = cfg.LargeSize
		}
	}

	p := &Pool{}
	for i, size := range sizes {
		size := size
		p.classes[i].size = size
		p.classes[i].pool.New = func() any {
			buf := make([]byte, size)
			return &buf
		}
	}
	return p
}

// Get returns a byte slice of exactly the requested length, backed by a
// pooled buffer whose capacity may be larger. The caller must return it
// with Put when done.
//
// Requests beyond the largest size class are allocated directly and will
// not be pooled.
func (p *Pool) Get(size int) []byte {
	for i := range p.classes {
		if size <= p.classes[i].size {
			bufPtr := p.classes[i].pool.Get().(*[]byte)
			return (*bufPtr)[:size]
		}
	}
	return make([]byte, size)
}

// Put returns a buffer obtained from Get to its size class. Buffers whose
// capacity matches no class (oversized direct allocations) are left to
// the garbage collector.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	capacity := cap(buf)
	for i := range p.classes {
		if capacity == p.classes[i].size {
			full := buf[:capacity]
			p.classes[i].pool.Put(&full)
			return
		}
	}
}

// globalPool backs the package-level Get/Put used when no custom pool is
// configured on the server.
var globalPool = NewPool(nil)

// Get returns a byte slice of at least the requested size from the
// process-wide pool.
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns a buffer to the process-wide pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}
