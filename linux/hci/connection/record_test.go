package connection

import (
	"testing"

	"github.com/go-ble/acl/linux/hci"
	"github.com/stretchr/testify/require"
)

func newTestRecord() *Record {
	addr := hci.AddressWithType{Address: hci.Address{0, 1, 2, 3, 4, 5}, Type: hci.AddressTypePublic}
	return NewRecord(0x0042, addr, hci.RoleMaster, hci.TransportLE)
}

func aclFragment(handle uint16, pb uint8, payload []byte) hci.ACLView {
	pkt := make([]byte, 4+len(payload))
	hci.BuildACLHeader(pkt, handle, pb, len(payload))
	copy(pkt[4:], payload)
	return hci.ACLView(pkt)
}

func TestRecordReassemblesSingleFragmentPDU(t *testing.T) {
	rec := newTestRecord()

	l2cap := make([]byte, 4+6)
	hci.BuildL2CAPHeader(l2cap, 6, 0x0040)
	copy(l2cap[4:], []byte("abcdef"))

	rec.HandleIncoming(aclFragment(rec.Handle, hci.PbfFirstAutoFlushable, l2cap))

	pdu, ok := rec.Inbound.TryPop()
	require.True(t, ok)
	require.Equal(t, l2cap, []byte(pdu))
}

func TestRecordReassemblesMultiFragmentPDU(t *testing.T) {
	rec := newTestRecord()

	body := []byte("0123456789ABCDEF")
	l2cap := make([]byte, 4+len(body))
	hci.BuildL2CAPHeader(l2cap, len(body), 0x0040)
	copy(l2cap[4:], body)

	first, rest := l2cap[:10], l2cap[10:]
	rec.HandleIncoming(aclFragment(rec.Handle, hci.PbfFirstAutoFlushable, first))
	require.Zero(t, rec.Inbound.Len())

	rec.HandleIncoming(aclFragment(rec.Handle, hci.PbfContinuingFragment, rest))

	pdu, ok := rec.Inbound.TryPop()
	require.True(t, ok)
	require.Equal(t, l2cap, []byte(pdu))
}

func TestRecordDropsContinuationLongerThanRemaining(t *testing.T) {
	rec := newTestRecord()

	body := []byte("0123456789")
	l2cap := make([]byte, 4+len(body))
	hci.BuildL2CAPHeader(l2cap, len(body), 0x0040)
	copy(l2cap[4:], body)

	rec.HandleIncoming(aclFragment(rec.Handle, hci.PbfFirstAutoFlushable, l2cap[:8]))
	// remaining is 6, this continuation carries more than that.
	rec.HandleIncoming(aclFragment(rec.Handle, hci.PbfContinuingFragment, make([]byte, 10)))

	require.Zero(t, rec.Inbound.Len())
	require.False(t, rec.reassembly.inProgress())
}

func TestRecordAbandonsInProgressPDUOnNewStart(t *testing.T) {
	rec := newTestRecord()

	stale := make([]byte, 4+10)
	hci.BuildL2CAPHeader(stale, 10, 0x0040)
	rec.HandleIncoming(aclFragment(rec.Handle, hci.PbfFirstAutoFlushable, stale[:6]))
	require.True(t, rec.reassembly.inProgress())

	fresh := make([]byte, 4+3)
	hci.BuildL2CAPHeader(fresh, 3, 0x0040)
	copy(fresh[4:], []byte("xyz"))
	rec.HandleIncoming(aclFragment(rec.Handle, hci.PbfFirstAutoFlushable, fresh))

	pdu, ok := rec.Inbound.TryPop()
	require.True(t, ok)
	require.Equal(t, fresh, []byte(pdu))
}

func TestRecordInboundOverflowDropsNewPDU(t *testing.T) {
	rec := newTestRecord()

	for i := 0; i < hci.InboundQueueCapacity; i++ {
		require.True(t, rec.Inbound.TryPush(PDU{byte(i)}))
	}

	l2cap := make([]byte, 4+1)
	hci.BuildL2CAPHeader(l2cap, 1, 0x0040)
	l2cap[4] = 0xFF
	rec.HandleIncoming(aclFragment(rec.Handle, hci.PbfFirstAutoFlushable, l2cap))

	require.Equal(t, hci.InboundQueueCapacity, rec.Inbound.Len())
	require.Equal(t, 1, rec.CongestionDrops())
}

func TestRecordDisconnectCallbackFiresOnceEvenIfAlreadyDisconnected(t *testing.T) {
	rec := newTestRecord()
	require.True(t, rec.MarkDisconnected(0x13))
	require.False(t, rec.MarkDisconnected(0x16))

	var gotReason uint8
	fired := make(chan struct{}, 1)
	rec.RegisterDisconnectCallback(func(reason uint8) {
		gotReason = reason
		fired <- struct{}{}
	}, nil)

	<-fired
	require.Equal(t, uint8(0x13), gotReason)
}

func TestRecordLEUpdateCallbackFiresOnceAndClears(t *testing.T) {
	rec := newTestRecord()

	var calls int
	rec.SetPendingLEUpdate(func(status uint8) { calls++ }, nil)

	require.True(t, rec.FireLEUpdate(0x00))
	require.False(t, rec.FireLEUpdate(0x00))
	require.Equal(t, 1, calls)
}
