package connection

import (
	"testing"

	"github.com/go-ble/acl/linux/hci"
	"github.com/stretchr/testify/require"
)

func TestTableInsertLookupRemove(t *testing.T) {
	tbl := NewTable()
	addr := hci.AddressWithType{Address: hci.Address{1, 2, 3, 4, 5, 6}, Type: hci.AddressTypePublic}
	rec := NewRecord(0x0001, addr, hci.RoleMaster, hci.TransportClassic)

	require.True(t, tbl.Insert(rec))
	require.False(t, tbl.Insert(rec), "duplicate handle insert must fail")

	got, ok := tbl.Lookup(0x0001)
	require.True(t, ok)
	require.Same(t, rec, got)

	require.Equal(t, 1, tbl.Len())
	tbl.Remove(0x0001)
	require.Equal(t, 0, tbl.Len())

	_, ok = tbl.Lookup(0x0001)
	require.False(t, ok)
}

func TestTableHandlesSnapshot(t *testing.T) {
	tbl := NewTable()
	addr := hci.AddressWithType{Address: hci.Address{1, 2, 3, 4, 5, 6}, Type: hci.AddressTypePublic}
	tbl.Insert(NewRecord(0x0001, addr, hci.RoleMaster, hci.TransportClassic))
	tbl.Insert(NewRecord(0x0002, addr, hci.RoleSlave, hci.TransportLE))

	require.ElementsMatch(t, []uint16{0x0001, 0x0002}, tbl.Handles())
}
