package connection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueRejectsPushPastCapacity(t *testing.T) {
	q := NewQueue(2)
	require.True(t, q.TryPush(PDU{1}))
	require.True(t, q.TryPush(PDU{2}))
	require.False(t, q.TryPush(PDU{3}))
	require.Equal(t, 2, q.Len())
}

func TestQueueClosedItemsStillDrainable(t *testing.T) {
	q := NewQueue(2)
	require.True(t, q.TryPush(PDU{1}))
	q.Close()

	require.True(t, q.Closed())
	require.False(t, q.TryPush(PDU{2}), "push after close must fail")

	p, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, PDU{1}, p)
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue(3)
	q.TryPush(PDU{1})
	q.TryPush(PDU{2})
	q.TryPush(PDU{3})

	for _, want := range []PDU{{1}, {2}, {3}} {
		got, ok := q.TryPop()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	_, ok := q.TryPop()
	require.False(t, ok)
}
