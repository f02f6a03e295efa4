package fragment

import (
	"testing"

	"github.com/go-ble/acl/linux/hci"
	"github.com/stretchr/testify/require"
)

func TestFragmenterSplitsAndReassembles(t *testing.T) {
	pdu := make([]byte, 47)
	for i := range pdu {
		pdu[i] = byte(i)
	}

	const maxPayload = 20
	f := New(0x0042, pdu, maxPayload)

	var got []byte
	var count int
	for {
		pkt, ok := f.Next()
		if !ok {
			break
		}
		count++

		view := hci.ACLView(pkt)
		require.NoError(t, view.Valid())
		require.Equal(t, uint16(0x0042), view.Handle())
		if count == 1 {
			require.Equal(t, uint8(hci.PbfFirstAutoFlushable), view.PB())
		} else {
			require.Equal(t, uint8(hci.PbfContinuingFragment), view.PB())
		}
		got = append(got, view.Payload()...)
	}

	require.True(t, f.Done())
	require.Equal(t, Count(len(pdu), maxPayload), count)
	require.Equal(t, pdu, got)
}

func TestFragmenterSinglePacketWhenUnderLimit(t *testing.T) {
	pdu := []byte{1, 2, 3}
	f := New(1, pdu, 100)

	pkt, ok := f.Next()
	require.True(t, ok)

	view := hci.ACLView(pkt)
	require.Equal(t, uint8(hci.PbfFirstAutoFlushable), view.PB())
	require.Equal(t, pdu, view.Payload())
	require.True(t, f.Done())

	_, ok = f.Next()
	require.False(t, ok)
}

func TestFragmenterZeroLengthPDUEmitsOneEmptyFragment(t *testing.T) {
	f := New(1, nil, 20)
	pkt, ok := f.Next()
	require.True(t, ok)
	require.Len(t, hci.ACLView(pkt).Payload(), 0)
	require.True(t, f.Done())
}
