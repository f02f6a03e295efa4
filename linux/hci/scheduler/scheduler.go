// Package scheduler implements Component D: the round-robin scheduler that
// turns each connection's queued outbound PDUs into ACL fragments under the
// controller's credit pool(s), fairly across every registered connection.
// Grounded on the teacher's controller.handleNumberOfCompletedPackets
// (BufferPool Put/Get accounting) generalized from a per-connection buffer
// pool to the spec's pool(s) shared by every connection of a transport,
// plus an explicit round-robin cursor the teacher's code never needed
// because it only ever served one LE connection's output at a time.
//
// Controllers that report dedicated LE buffers (LE Read Buffer Size
// returning a non-zero HCTotalNumLEDataPackets) keep ACL-U and LE-U credits
// in two independent pools, exactly as the original's acl_connection_handler
// distinguished classic_acl_packet_credits from le_acl_packet_credits;
// controllers that don't share one pool across both transports, in which
// case NewDualPool is simply called with the same pool and payload size
// twice.
package scheduler

import (
	"sync"

	"github.com/go-ble/acl/internal/btlog"
	"github.com/go-ble/acl/linux/hci"
	"github.com/go-ble/acl/linux/hci/connection"
	"github.com/go-ble/acl/linux/hci/fragment"
)

// CreditPool is the controller's shared ACL buffer credit pool (§3
// "Controller Credit Pool"), replenished by Number-Of-Completed-Packets
// events and drained by every ACL fragment sent to the controller,
// regardless of which connection it belongs to.
type CreditPool struct {
	mu        sync.Mutex
	available int
}

// NewCreditPool creates a pool seeded with the controller's advertised ACL
// buffer count (read from Read-Buffer-Size at manager Start).
func NewCreditPool(initial int) *CreditPool {
	return &CreditPool{available: initial}
}

// TryAcquire consumes one credit, reporting false if none are available.
func (p *CreditPool) TryAcquire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.available <= 0 {
		return false
	}
	p.available--
	return true
}

// Release returns n credits to the pool, called from the
// Number-Of-Completed-Packets handler.
func (p *CreditPool) Release(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available += n
}

// Available reports the current credit count, for diagnostics.
func (p *CreditPool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// Sender writes one already-built ACL fragment to the transport.
type Sender func(pkt []byte) error

// Scheduler is the fair, credit-gated round-robin dispatcher of Component
// D. One Tick call sends at most one ACL fragment, drawn from the next
// eligible connection in rotation, so no single busy connection can starve
// the others of the shared credit pool (§8 testable property "fairness").
type Scheduler struct {
	mu            sync.Mutex
	aclPool       *CreditPool
	lePool        *CreditPool
	aclMaxPayload int
	leMaxPayload  int
	send          Sender
	log           btlog.Logger

	conns []*schedEntry
	index map[uint16]int
	pos   int

	// handleTransport remembers which pool serviced a handle even after
	// Unregister drops it from the rotation, so a Number-Of-Completed-
	// Packets event that arrives after disconnection still credits the
	// pool that actually lent the buffer out.
	handleTransport map[uint16]hci.Transport
}

type schedEntry struct {
	rec          *connection.Record
	frag         *fragment.Fragmenter
	disconnected bool
}

// New creates a scheduler with a single credit pool shared by both
// transports, for controllers that report no dedicated LE buffers.
func New(pool *CreditPool, maxPayload int, send Sender) *Scheduler {
	return NewDualPool(pool, pool, maxPayload, maxPayload, send)
}

// NewDualPool creates a scheduler that draws ACL-U fragments from aclPool
// and LE-U fragments from lePool, each fragmented to its own transport's
// maximum payload, matching a controller that reports dedicated LE buffers
// via LE Read Buffer Size.
func NewDualPool(aclPool, lePool *CreditPool, aclMaxPayload, leMaxPayload int, send Sender) *Scheduler {
	return &Scheduler{
		aclPool:         aclPool,
		lePool:          lePool,
		aclMaxPayload:   aclMaxPayload,
		leMaxPayload:    leMaxPayload,
		send:            send,
		log:             btlog.Get().With(map[string]interface{}{"component": "scheduler"}),
		index:           make(map[uint16]int),
		handleTransport: make(map[uint16]hci.Transport),
	}
}

func (s *Scheduler) poolFor(t hci.Transport) *CreditPool {
	if t == hci.TransportLE {
		return s.lePool
	}
	return s.aclPool
}

func (s *Scheduler) payloadFor(t hci.Transport) int {
	if t == hci.TransportLE {
		return s.leMaxPayload
	}
	return s.aclMaxPayload
}

// Register adds rec to the round-robin rotation. Registering an
// already-registered handle is a no-op.
func (s *Scheduler) Register(rec *connection.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[rec.Handle]; ok {
		return
	}
	s.index[rec.Handle] = len(s.conns)
	s.conns = append(s.conns, &schedEntry{rec: rec})
	s.handleTransport[rec.Handle] = rec.Transport
}

// SetDisconnect marks handle as no longer eligible for service without
// removing its rotation slot, so an in-flight fragmentation of an
// already-dequeued PDU is allowed to finish before Unregister compacts it
// out of the rotation.
func (s *Scheduler) SetDisconnect(handle uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[handle]; ok {
		s.conns[i].disconnected = true
	}
}

// Unregister removes handle from the rotation entirely.
func (s *Scheduler) Unregister(handle uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[handle]
	if !ok {
		return
	}
	last := len(s.conns) - 1
	s.conns[i] = s.conns[last]
	s.index[s.conns[i].rec.Handle] = i
	s.conns = s.conns[:last]
	delete(s.index, handle)
	if s.pos > last {
		s.pos = 0
	}
}

// Tick services at most one connection: if it has an ACL fragment ready to
// go and the credit pool has a credit to spend, Tick sends it and rotates
// the cursor past that connection, giving every other registered
// connection a turn before it is revisited. Tick reports whether it sent
// a fragment.
func (s *Scheduler) Tick() bool {
	s.mu.Lock()
	n := len(s.conns)
	if n == 0 {
		s.mu.Unlock()
		return false
	}

	for i := 0; i < n; i++ {
		idx := (s.pos + i) % n
		e := s.conns[idx]
		if e.disconnected && (e.frag == nil || e.frag.Done()) {
			continue
		}
		if e.frag == nil || e.frag.Done() {
			pdu, ok := e.rec.Outbound.TryPop()
			if !ok {
				continue
			}
			e.frag = fragment.New(e.rec.Handle, []byte(pdu), s.payloadFor(e.rec.Transport))
		}

		if !s.poolFor(e.rec.Transport).TryAcquire() {
			// This connection's transport pool is drained, but another
			// transport's pool may still have room; keep rotating instead
			// of stalling every connection on one pool's exhaustion.
			continue
		}

		pkt, ok := e.frag.Next()
		s.pos = (idx + 1) % n
		s.mu.Unlock()

		if !ok {
			// Shouldn't happen: a fresh or not-yet-done fragmenter always
			// has a next fragment. Treat as nothing sent this tick.
			return false
		}
		if err := s.send(pkt); err != nil {
			s.log.Errorf("sending ACL fragment: %v", err)
		}
		return true
	}

	s.mu.Unlock()
	return false
}

// HandleNumberOfCompletedPackets credits the pool for count packets the
// controller has freed for handle. Credits are released unconditionally,
// even for a handle no longer registered: the event confirms buffers the
// host already handed to the controller for a packet sent before
// disconnection, and the controller's flow-control accounting has no
// concept of "this connection is gone now" to withhold the credit on.
// handleTransport is never cleared on Unregister for exactly this reason;
// it only grows and is overwritten on handle reuse.
func (s *Scheduler) HandleNumberOfCompletedPackets(handle uint16, count int) {
	s.mu.Lock()
	transport, ok := s.handleTransport[handle]
	s.mu.Unlock()
	if !ok {
		// Never registered on this scheduler; fall back to ACL-U, the
		// pool every controller has.
		transport = hci.TransportClassic
	}
	s.poolFor(transport).Release(count)
}
