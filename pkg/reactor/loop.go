package reactor

import (
	"runtime/debug"

	"github.com/tcpkit/tcpkit/internal/logger"
	"github.com/tcpkit/tcpkit/pkg/metrics"
)

const queueCapacity = 1024

// Loop is a single event-loop goroutine owned by a Group. All work
// submitted to a loop executes serially on that goroutine, so state
// confined to one loop needs no locking.
type Loop struct {
	name    string
	group   *Group
	io      chan func()
	tasks   chan func()
	quit    chan struct{}
	metrics metrics.ServerMetrics
}

func newLoop(name string, g *Group, m metrics.ServerMetrics) *Loop {
	l := &Loop{
		name:    name,
		group:   g,
		io:      make(chan func(), queueCapacity),
		quit:    make(chan struct{}),
		metrics: m,
	}
	// An io rate of 100 means the loop never runs queued tasks; a nil
	// task channel blocks forever in the scheduling select.
	if g.ioRate < 100 {
		l.tasks = make(chan func(), queueCapacity)
	}
	return l
}

// Name returns the loop name, e.g. "worker-3".
func (l *Loop) Name() string { return l.name }

// PostIO submits readiness work: an accept runner on acceptor loops, a
// decoded-frame dispatch on worker loops. Blocks while the queue is full
// so slow loops exert backpressure on their producers.
func (l *Loop) PostIO(fn func()) error {
	select {
	case <-l.quit:
		return ErrStopped
	default:
	}
	select {
	case l.io <- fn:
		l.observeDepth()
		return nil
	case <-l.quit:
		return ErrStopped
	}
}

// Post submits an ordinary task. Fails with ErrTasksDisabled on groups
// whose io rate is 100, since those loops never drain the task queue.
func (l *Loop) Post(fn func()) error {
	if l.group.ioRate == 100 {
		return ErrTasksDisabled
	}
	select {
	case <-l.quit:
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- fn:
		l.observeDepth()
		return nil
	case <-l.quit:
		return ErrStopped
	}
}

// run is the scheduling cycle. Per cycle a loop executes up to ioRate
// units of readiness work followed by up to 100-ioRate queued tasks, so
// the configured rate bounds the fraction of a busy cycle spent on
// either kind. An idle loop blocks until work or shutdown arrives.
func (l *Loop) run() {
	defer l.group.wg.Done()

	ioBudget := l.group.ioRate
	taskBudget := 100 - l.group.ioRate

	for {
		ran := l.drain(l.io, ioBudget, "io")
		ran += l.drain(l.tasks, taskBudget, "task")
		if ran > 0 {
			continue
		}

		select {
		case fn := <-l.io:
			l.exec(fn, "io")
		case fn := <-l.tasks:
			l.exec(fn, "task")
		case <-l.quit:
			l.drainAll()
			return
		}
	}
}

// drain runs at most budget units from q without blocking.
func (l *Loop) drain(q chan func(), budget int, kind string) int {
	ran := 0
	for ran < budget {
		select {
		case fn := <-q:
			l.exec(fn, kind)
			ran++
		default:
			return ran
		}
	}
	return ran
}

// drainAll empties both queues after shutdown so already-submitted work
// is never dropped.
func (l *Loop) drainAll() {
	for {
		select {
		case fn := <-l.io:
			l.exec(fn, "io")
		case fn := <-l.tasks:
			l.exec(fn, "task")
		default:
			return
		}
	}
}

// exec runs one unit of work with panic recovery; a panicking handler
// must not take down the loop with every other connection bound to it.
func (l *Loop) exec(fn func(), kind string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in reactor loop",
				logger.KeyLoop, l.name, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	if l.metrics != nil {
		l.metrics.RecordLoopTask(l.group.name, kind)
	}
	fn()
	l.observeDepth()
}

func (l *Loop) observeDepth() {
	if l.metrics != nil {
		l.metrics.SetLoopQueueDepth(l.name, len(l.io)+len(l.tasks))
	}
}
