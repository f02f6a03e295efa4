package connection

import (
	"sync"

	"github.com/go-ble/acl/linux/hci"
)

// Table is the handle-keyed connection table (§3): a handle is present in
// the table if and only if it has not yet been purged following
// disconnection ("H ∈ table ⇔ H ∉ disconnected-purged set").
type Table struct {
	mu      sync.Mutex
	records map[uint16]*Record
}

// NewTable creates an empty connection table.
func NewTable() *Table {
	return &Table{records: make(map[uint16]*Record)}
}

// Insert adds rec under its own Handle. ok is false if the handle is
// already present, which the core treats as a controller protocol
// violation (a Connection-Complete for a handle still in use).
func (t *Table) Insert(rec *Record) (ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.records[rec.Handle]; exists {
		return false
	}
	t.records[rec.Handle] = rec
	return true
}

// Lookup returns the record for handle, if present.
func (t *Table) Lookup(handle uint16) (*Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[handle]
	return rec, ok
}

// LookupByAddress finds the live Classic record for addr, used for
// controller events (Role Change) delivered by BDADDR rather than
// connection handle.
func (t *Table) LookupByAddress(addr hci.Address) (*Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range t.records {
		if rec.Transport == hci.TransportClassic && rec.Address.Address == addr {
			return rec, true
		}
	}
	return nil, false
}

// Remove purges handle from the table. It does not touch the record's
// queues or callbacks; callers mark the record disconnected first so
// anyone still holding a reference observes a consistent terminal state.
func (t *Table) Remove(handle uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, handle)
}

// Len reports the number of live connections.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Each calls fn once per live record. fn must not call back into the
// table; Each holds the table lock for its duration.
func (t *Table) Each(fn func(*Record)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range t.records {
		fn(rec)
	}
}

// Handles returns a snapshot of the currently live handles.
func (t *Table) Handles() []uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]uint16, 0, len(t.records))
	for h := range t.records {
		out = append(out, h)
	}
	return out
}
