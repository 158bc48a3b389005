// Package reactor implements the event-loop groups that schedule all
// server work.
//
// A Group owns N loops, each a single goroutine multiplexing two queues:
// readiness work (accepting connections, dispatching decoded frames) and
// ordinary queued tasks. The group's io rate decides how much of each
// scheduling cycle a loop devotes to readiness work versus draining its
// task backlog.
//
// A server runs two groups: the acceptor ("boss") group, whose loops only
// ever do readiness work, and the worker group, which owns every accepted
// connection for that connection's whole lifetime.
package reactor

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/tcpkit/tcpkit/internal/logger"
	"github.com/tcpkit/tcpkit/pkg/metrics"
)

var (
	// ErrStopped is returned when work is submitted to a group that has
	// begun shutting down.
	ErrStopped = errors.New("reactor: group stopped")

	// ErrTasksDisabled is returned when a task is submitted to a group
	// whose io rate is 100 and which therefore never drains its task
	// queue.
	ErrTasksDisabled = errors.New("reactor: group schedules readiness work only")
)

// Group is an owned pool of event loops sharing a name, a size, and an
// io-to-task scheduling rate.
type Group struct {
	name   string
	ioRate int
	loops  []*Loop
	next   atomic.Uint64

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewGroup creates and starts a group of n loops named name-0 .. name-(n-1).
//
// n == 0 applies default sizing of twice the available cores. ioRate must
// be in [1,100]; 100 disables the task queue entirely (acceptor groups).
// Metrics may be nil.
func NewGroup(name string, n int, ioRate int, m metrics.ServerMetrics) *Group {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0) * 2
	}
	if ioRate < 1 || ioRate > 100 {
		ioRate = 70
	}

	g := &Group{
		name:   name,
		ioRate: ioRate,
		loops:  make([]*Loop, n),
	}
	for i := range g.loops {
		g.loops[i] = newLoop(fmt.Sprintf("%s-%d", name, i), g, m)
	}

	g.wg.Add(n)
	for _, l := range g.loops {
		go l.run()
	}

	logger.Debug("reactor group started",
		logger.KeyGroup, name, logger.KeyLoops, n, logger.KeyIORate, ioRate)
	return g
}

// Name returns the group name ("boss", "worker").
func (g *Group) Name() string { return g.name }

// Size returns the number of loops in the group.
func (g *Group) Size() int { return len(g.loops) }

// Next returns a loop chosen round-robin. Connections registered to the
// returned loop stay bound to it for their entire lifetime.
func (g *Group) Next() *Loop {
	n := g.next.Add(1)
	return g.loops[(n-1)%uint64(len(g.loops))]
}

// Shutdown stops all loops and blocks until every loop goroutine has
// fully quiesced. Work already queued is drained before a loop exits;
// new submissions fail with ErrStopped.
//
// The wait is deliberately uninterruptible: a shutdown request must not
// be abandoned part-way, or the caller would observe a group that is
// neither running nor stopped.
func (g *Group) Shutdown() {
	g.stopOnce.Do(func() {
		logger.Debug("reactor group shutting down", logger.KeyGroup, g.name)
		for _, l := range g.loops {
			close(l.quit)
		}
	})
	g.wg.Wait()
	logger.Debug("reactor group stopped", logger.KeyGroup, g.name)
}
