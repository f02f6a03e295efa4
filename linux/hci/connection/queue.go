// Package connection implements Component E of the ACL manager: the
// per-handle connection table and the L2CAP reassembler that turns
// arriving ACL fragments into complete PDUs, grounded on the teacher's
// connection.Conn (recombine, chInPkt/chInPDU) generalized from a single
// streaming Read/Write pair into the spec's explicit bounded
// producer/consumer queues.
package connection

import "sync"

// PDU is one complete, reassembled (inbound) or not-yet-fragmented
// (outbound) L2CAP protocol data unit.
type PDU []byte

// Queue is a bounded FIFO with single-producer/single-consumer semantics
// on each direction, the "explicit bidirectional-queue abstraction" the
// spec requires connections to share between the scheduler/reassembler
// and the upper layer (§3, §5).
type Queue struct {
	mu       sync.Mutex
	items    []PDU
	capacity int
	closed   bool
	notEmpty chan struct{}
}

// NewQueue creates a queue bounded at capacity entries.
func NewQueue(capacity int) *Queue {
	return &Queue{capacity: capacity, notEmpty: make(chan struct{}, 1)}
}

// TryPush enqueues p if there is room, signalling overflow via ok=false so
// the caller can log congestion and drop the new packet per policy
// ("oldest policy drops the NEW packet", §3).
func (q *Queue) TryPush(p PDU) (ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, p)
	q.signal()
	return true
}

// TryPop dequeues the oldest PDU without blocking.
func (q *Queue) TryPop() (PDU, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p, true
}

// Len reports the number of PDUs currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close marks the queue closed; queued items remain dequeueable by
// TryPop (the spec requires already-reassembled PDUs to survive
// disconnect, §8 S4), but TryPush afterwards always fails.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

func (q *Queue) signal() {
	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
}

// Ready returns a channel that receives a value whenever a push transitions
// the queue from possibly-empty to non-empty, letting a handler wait
// cooperatively instead of polling (used by the scheduler's tick trigger).
func (q *Queue) Ready() <-chan struct{} {
	return q.notEmpty
}
