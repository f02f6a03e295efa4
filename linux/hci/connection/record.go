package connection

import (
	"sync"

	"github.com/go-ble/acl/internal/btlog"
	"github.com/go-ble/acl/linux/hci"
)

// CommandSink receives per-handle controller events (the asynchronous
// query/management completion events; Command-Complete return parameters
// go back to the command's sender instead) that a Record forwards to
// whichever upper-layer object issued the original command (§3
// "command_callbacks").
type CommandSink interface {
	Deliver(code int, payload []byte)
}

// DisconnectFunc is the one-shot callback fired exactly once when a
// connection transitions to disconnected, whether that happens before or
// after the callback is registered (§3 "disconnect_callback").
type DisconnectFunc func(reason uint8)

// LEUpdateFunc is the one-shot callback consumed by the next
// LE-Connection-Update-Complete event for this handle (§3
// "pending_le_update_cb").
type LEUpdateFunc func(status uint8)

// Record is the per-handle Connection Record (§3): the immutable identity
// of a logical link plus its mutable disconnect state, its bounded
// inbound/outbound queues, its in-progress reassembly buffer, and the
// upper-layer callback slots the manager core populates on its behalf.
// Grounded on the teacher's connection.Conn, generalized from a single
// streaming Read/Write goroutine pair to the spec's explicit queue and
// callback-slot model.
type Record struct {
	Handle    uint16
	Address   hci.AddressWithType
	Role      uint8
	Transport hci.Transport

	Inbound  *Queue
	Outbound *Queue

	log btlog.Logger

	mu               sync.Mutex
	disconnected     bool
	disconnectReason uint8

	reassembly reassembly

	commandSink     CommandSink
	commandExecutor *hci.Executor

	disconnectCB   DisconnectFunc
	disconnectExec *hci.Executor

	pendingLEUpdateCB   LEUpdateFunc
	pendingLEUpdateExec *hci.Executor

	congestionDrops int
}

type reassembly struct {
	buf       []byte
	remaining int
}

func (r *reassembly) reset() {
	r.buf = nil
	r.remaining = 0
}

func (r *reassembly) inProgress() bool {
	return r.buf != nil
}

// NewRecord creates a Connection Record for a freshly established link.
func NewRecord(handle uint16, addr hci.AddressWithType, role uint8, transport hci.Transport) *Record {
	return &Record{
		Handle:    handle,
		Address:   addr,
		Role:      role,
		Transport: transport,
		Inbound:   NewQueue(hci.InboundQueueCapacity),
		Outbound:  NewQueue(hci.OutboundQueueCapacity),
		log:       btlog.Get().With(map[string]interface{}{"handle": handle, "addr": addr.String()}),
	}
}

// Disconnected reports whether the link has already torn down.
func (r *Record) Disconnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disconnected
}

// MarkDisconnected transitions the record to disconnected exactly once.
// fired reports whether this call performed the transition; subsequent
// calls return false so the core only runs teardown side effects once.
func (r *Record) MarkDisconnected(reason uint8) (fired bool) {
	r.mu.Lock()
	if r.disconnected {
		r.mu.Unlock()
		return false
	}
	r.disconnected = true
	r.disconnectReason = reason
	cb, exec := r.disconnectCB, r.disconnectExec
	r.mu.Unlock()

	r.Inbound.Close()
	r.Outbound.Close()

	if cb != nil {
		fireOneShot(exec, func() { cb(reason) })
	}
	return true
}

// DisconnectReason returns the reason code recorded by MarkDisconnected,
// valid only once Disconnected reports true.
func (r *Record) DisconnectReason() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disconnectReason
}

// RegisterDisconnectCallback stores the one-shot disconnect notification.
// If the link has already disconnected, cb fires immediately (posted on
// exec) instead of being stored, matching the "fires once on disconnect or
// immediately if already disconnected" requirement.
func (r *Record) RegisterDisconnectCallback(cb DisconnectFunc, exec *hci.Executor) {
	r.mu.Lock()
	if r.disconnected {
		reason := r.disconnectReason
		r.mu.Unlock()
		fireOneShot(exec, func() { cb(reason) })
		return
	}
	r.disconnectCB = cb
	r.disconnectExec = exec
	r.mu.Unlock()
}

// RegisterCommandSink attaches the upper-layer object that should receive
// this handle's asynchronous query and management events.
func (r *Record) RegisterCommandSink(sink CommandSink, exec *hci.Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commandSink = sink
	r.commandExecutor = exec
}

// DeliverCommandEvent forwards code/payload to the registered command
// sink, if any. A handle with no registered sink silently drops the
// event; there is no upper layer listening yet.
func (r *Record) DeliverCommandEvent(code int, payload []byte) {
	r.mu.Lock()
	sink, exec := r.commandSink, r.commandExecutor
	r.mu.Unlock()
	if sink == nil {
		return
	}
	fireOneShot(exec, func() { sink.Deliver(code, payload) })
}

// SetPendingLEUpdate arms the one-shot LE-Connection-Update-Complete
// callback. A second call before the first fires overwrites the slot;
// the core enforces that only one update request is outstanding per
// handle.
func (r *Record) SetPendingLEUpdate(cb LEUpdateFunc, exec *hci.Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingLEUpdateCB = cb
	r.pendingLEUpdateExec = exec
}

// TryArmLEUpdate arms the pending LE update callback only if none is
// already armed, reporting whether it did. Used to reject a second
// concurrent LE Connection Update request on the same handle.
func (r *Record) TryArmLEUpdate(cb LEUpdateFunc, exec *hci.Executor) (armed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pendingLEUpdateCB != nil {
		return false
	}
	r.pendingLEUpdateCB = cb
	r.pendingLEUpdateExec = exec
	return true
}

// FireLEUpdate consumes and runs the pending LE update callback, if one is
// armed, reporting whether it fired.
func (r *Record) FireLEUpdate(status uint8) bool {
	r.mu.Lock()
	cb, exec := r.pendingLEUpdateCB, r.pendingLEUpdateExec
	r.pendingLEUpdateCB = nil
	r.pendingLEUpdateExec = nil
	r.mu.Unlock()
	if cb == nil {
		return false
	}
	fireOneShot(exec, func() { cb(status) })
	return true
}

func fireOneShot(exec *hci.Executor, fn func()) {
	if exec == nil {
		fn()
		return
	}
	exec.Post(fn)
}

// HandleIncoming feeds one arriving ACL fragment through the L2CAP
// reassembler (§4.E) and, once a PDU completes, enqueues it on Inbound.
func (r *Record) HandleIncoming(view hci.ACLView) {
	switch view.PB() {
	case hci.PbfFirstNonAutoFlushable:
		r.log.Warn("dropping non-automatically-flushable PDU start, unsupported by this host")

	case hci.PbfFirstAutoFlushable:
		r.startPDU(view.Payload())

	case hci.PbfContinuingFragment:
		r.continuePDU(view.Payload())

	default:
		r.log.Warnf("unexpected packet boundary flag %d from controller", view.PB())
	}
}

func (r *Record) startPDU(payload []byte) {
	if r.reassembly.inProgress() {
		r.log.Warn("new PDU start while previous PDU incomplete, abandoning it")
		r.reassembly.reset()
	}

	if len(payload) < hci.L2CAPBasicHeaderLen {
		r.log.Warn("dropping ACL fragment shorter than L2CAP header")
		return
	}

	hdr := hci.L2CAPHeaderView(payload)
	pduLen, err := hdr.Len()
	if err != nil {
		r.log.Warnf("malformed L2CAP header: %v", err)
		return
	}

	carried := len(payload) - hci.L2CAPBasicHeaderLen
	remaining := pduLen - carried

	switch {
	case remaining == 0:
		r.pushComplete(append([]byte(nil), payload...))
	case remaining > 0:
		r.reassembly.buf = append([]byte(nil), payload...)
		r.reassembly.remaining = remaining
	default:
		r.log.Warn("L2CAP PDU length shorter than first fragment's payload, dropping")
	}
}

func (r *Record) continuePDU(payload []byte) {
	if !r.reassembly.inProgress() || len(payload) > r.reassembly.remaining {
		r.log.Warn("continuation fragment without a matching in-progress PDU, dropping")
		r.reassembly.reset()
		return
	}

	r.reassembly.buf = append(r.reassembly.buf, payload...)
	r.reassembly.remaining -= len(payload)

	if r.reassembly.remaining == 0 {
		complete := r.reassembly.buf
		r.reassembly.reset()
		r.pushComplete(complete)
	}
}

func (r *Record) pushComplete(pdu []byte) {
	if !r.Inbound.TryPush(pdu) {
		r.mu.Lock()
		r.congestionDrops++
		r.mu.Unlock()
		r.log.Warnf("inbound queue full for %s, dropping reassembled PDU", r.Address)
	}
}

// CongestionDrops reports how many reassembled PDUs were dropped because
// Inbound was full, for diagnostics.
func (r *Record) CongestionDrops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.congestionDrops
}
