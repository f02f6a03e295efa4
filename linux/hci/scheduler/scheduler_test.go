package scheduler

import (
	"testing"

	"github.com/go-ble/acl/linux/hci"
	"github.com/go-ble/acl/linux/hci/connection"
	"github.com/stretchr/testify/require"
)

func newRec(handle uint16) *connection.Record {
	return newRecTransport(handle, hci.TransportLE)
}

func newRecTransport(handle uint16, transport hci.Transport) *connection.Record {
	addr := hci.AddressWithType{Address: hci.Address{byte(handle), 0, 0, 0, 0, 0}, Type: hci.AddressTypePublic}
	return connection.NewRecord(handle, addr, hci.RoleMaster, transport)
}

func TestSchedulerRoundRobinsAcrossConnections(t *testing.T) {
	var sent []uint16
	sched := New(NewCreditPool(100), 1000, func(pkt []byte) error {
		sent = append(sent, hci.ACLView(pkt).Handle())
		return nil
	})

	recA, recB := newRec(1), newRec(2)
	sched.Register(recA)
	sched.Register(recB)

	recA.Outbound.TryPush(connection.PDU{1})
	recB.Outbound.TryPush(connection.PDU{2})
	recA.Outbound.TryPush(connection.PDU{3})

	require.True(t, sched.Tick())
	require.True(t, sched.Tick())
	require.True(t, sched.Tick())
	require.False(t, sched.Tick(), "nothing left queued")

	require.Equal(t, []uint16{1, 2, 1}, sent)
}

func TestSchedulerBlocksWhenCreditPoolEmpty(t *testing.T) {
	pool := NewCreditPool(0)
	sched := New(pool, 1000, func(pkt []byte) error { return nil })

	rec := newRec(1)
	sched.Register(rec)
	rec.Outbound.TryPush(connection.PDU{1, 2, 3})

	require.False(t, sched.Tick())

	pool.Release(1)
	require.True(t, sched.Tick())
}

func TestSchedulerFragmentsLargePDUAcrossTicks(t *testing.T) {
	var payloads [][]byte
	sched := New(NewCreditPool(100), 4, func(pkt []byte) error {
		payloads = append(payloads, append([]byte(nil), hci.ACLView(pkt).Payload()...))
		return nil
	})

	rec := newRec(1)
	sched.Register(rec)
	rec.Outbound.TryPush(connection.PDU{1, 2, 3, 4, 5, 6, 7, 8, 9})

	for sched.Tick() {
	}

	var got []byte
	for _, p := range payloads {
		got = append(got, p...)
	}
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
	require.True(t, len(payloads) > 1, "should have split across multiple ticks")
}

func TestSchedulerSkipsDisconnectedConnection(t *testing.T) {
	var sent []uint16
	sched := New(NewCreditPool(100), 1000, func(pkt []byte) error {
		sent = append(sent, hci.ACLView(pkt).Handle())
		return nil
	})

	recA, recB := newRec(1), newRec(2)
	sched.Register(recA)
	sched.Register(recB)
	sched.SetDisconnect(recA.Handle)

	recA.Outbound.TryPush(connection.PDU{1})
	recB.Outbound.TryPush(connection.PDU{2})

	require.True(t, sched.Tick())
	require.Equal(t, []uint16{2}, sent)
}

func TestSchedulerNumberOfCompletedPacketsCreditsPoolEvenAfterUnregister(t *testing.T) {
	pool := NewCreditPool(0)
	sched := New(pool, 1000, func(pkt []byte) error { return nil })

	rec := newRec(1)
	sched.Register(rec)
	sched.Unregister(rec.Handle)

	sched.HandleNumberOfCompletedPackets(rec.Handle, 3)
	require.Equal(t, 3, pool.Available())
}

func TestSchedulerDualPoolDrainsTransportsIndependently(t *testing.T) {
	var sent []uint16
	aclPool, lePool := NewCreditPool(0), NewCreditPool(100)
	sched := NewDualPool(aclPool, lePool, 1000, 1000, func(pkt []byte) error {
		sent = append(sent, hci.ACLView(pkt).Handle())
		return nil
	})

	classic := newRecTransport(1, hci.TransportClassic)
	le := newRecTransport(2, hci.TransportLE)
	sched.Register(classic)
	sched.Register(le)

	classic.Outbound.TryPush(connection.PDU{1})
	le.Outbound.TryPush(connection.PDU{2})

	// ACL-U pool is empty, so only the LE-U connection can be serviced;
	// a drained pool for one transport must not stall the other.
	require.True(t, sched.Tick())
	require.Equal(t, []uint16{2}, sent)
	require.False(t, sched.Tick())

	aclPool.Release(1)
	require.True(t, sched.Tick())
	require.Equal(t, []uint16{2, 1}, sent)
}

func TestSchedulerDualPoolCreditsNumberOfCompletedPacketsToOwningPool(t *testing.T) {
	aclPool, lePool := NewCreditPool(0), NewCreditPool(0)
	sched := NewDualPool(aclPool, lePool, 1000, 1000, func(pkt []byte) error { return nil })

	classic := newRecTransport(1, hci.TransportClassic)
	le := newRecTransport(2, hci.TransportLE)
	sched.Register(classic)
	sched.Register(le)
	sched.Unregister(classic.Handle)
	sched.Unregister(le.Handle)

	sched.HandleNumberOfCompletedPackets(classic.Handle, 2)
	sched.HandleNumberOfCompletedPackets(le.Handle, 5)

	require.Equal(t, 2, aclPool.Available())
	require.Equal(t, 5, lePool.Available())
}
