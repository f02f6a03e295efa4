package hci

// Executor is a single-threaded cooperative task queue: the unit the spec's
// "handler" concept (§5, §9) is built from. Every mutation of a handler's
// owned state happens as one posted task running on that handler's own
// goroutine; cross-handler communication is strictly Post, never a shared
// lock. Grounded on the teacher's channel-driven loops (cmdSender.loop,
// HCI.sktProcessLoop).
type Executor struct {
	tasks chan func()
	done  chan struct{}
}

// NewExecutor creates an executor with a bounded backlog of pending tasks.
func NewExecutor(backlog int) *Executor {
	return &Executor{
		tasks: make(chan func(), backlog),
		done:  make(chan struct{}),
	}
}

// Post enqueues fn to run on the executor's own goroutine. Post never
// blocks the caller on fn's execution; it returns once fn is queued (or
// is dropped because the executor has stopped).
func (e *Executor) Post(fn func()) {
	select {
	case <-e.done:
		return
	case e.tasks <- fn:
	}
}

// Run drains posted tasks until Stop is called. Callers start this on its
// own goroutine: `go exec.Run()`.
func (e *Executor) Run() {
	for {
		select {
		case <-e.done:
			return
		case fn := <-e.tasks:
			fn()
		}
	}
}

// Stop signals Run to return once the current task (if any) completes.
// Tasks still queued behind it are discarded.
func (e *Executor) Stop() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}
