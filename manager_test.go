package acl

import (
	"testing"
	"time"

	"github.com/go-ble/acl/linux/hci"
	"github.com/go-ble/acl/linux/hci/cmd"
	"github.com/stretchr/testify/require"
)

// startupOnCommand answers the fixed sequence of commands Manager.Start
// issues against a Classic-only controller (no LE buffer report): Reset,
// Read BD_ADDR, Read Buffer Size succeed; LE Read Buffer Size fails, which
// keeps SupportsBLE false and skips LE Read Local Supported Features.
func startupOnCommand(fc *fakeController, localBD hci.Address) func(opcode uint16, params []byte) {
	var bdaddr [6]byte
	for i := 0; i < 6; i++ {
		bdaddr[i] = localBD[5-i]
	}
	return func(opcode uint16, params []byte) {
		switch opcode {
		case cmd.OpReset:
			fc.queueEvent(buildCommandComplete(opcode, []byte{0x00}))
		case cmd.OpReadBDADDR:
			rp := append([]byte{0x00}, bdaddr[:]...)
			fc.queueEvent(buildCommandComplete(opcode, rp))
		case cmd.OpReadBufferSize:
			rp := make([]byte, 8)
			rp[0] = 0x00
			rp[1], rp[2] = 0x1B, 0x00 // HCACLDataPacketLength = 27
			rp[3] = 0x00              // HCSynchronousDataPacketLength
			rp[4], rp[5] = 0x08, 0x00 // HCTotalNumACLDataPackets = 8
			rp[6], rp[7] = 0x00, 0x00
			fc.queueEvent(buildCommandComplete(opcode, rp))
		case cmd.OpLEReadBufferSize:
			fc.queueEvent(buildCommandComplete(opcode, []byte{0x01})) // unknown command, no BLE
		default:
			panic("startupOnCommand: unexpected opcode during startup")
		}
	}
}

// startManager brings up a Manager over fc, answering exactly the startup
// command sequence, then hands the test a mutable onCommand slot for
// whatever comes next.
func startManager(t *testing.T, fc *fakeController, localBD hci.Address) *Manager {
	t.Helper()
	fc.onCommand = startupOnCommand(fc, localBD)

	m, err := New()
	require.NoError(t, err)
	require.NoError(t, m.Start(fc))
	t.Cleanup(func() { _ = m.Stop() })
	return m
}

func waitResult(t *testing.T, ch chan ConnectResult) ConnectResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connect result")
		return ConnectResult{}
	}
}

// TestCreateConnectionClassicSuccess exercises S1: a Classic outbound
// connection request that the controller accepts, reported first through
// Command Status and then through Connection Complete.
func TestCreateConnectionClassicSuccess(t *testing.T) {
	fc := newFakeController()
	local := hci.Address{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	m := startManager(t, fc, local)

	peer := hci.Address{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	const handle uint16 = 0x0040

	fc.onCommand = func(opcode uint16, params []byte) {
		require.Equal(t, cmd.OpCreateConnection, opcode)
		fc.queueEvent(buildCommandStatus(opcode, 0x00))
		fc.queueEvent(buildConnectionComplete(0x00, handle, peer))
	}

	results := make(chan ConnectResult, 1)
	require.NoError(t, m.CreateConnection(peer, func(r ConnectResult) { results <- r }))

	r := waitResult(t, results)
	require.NoError(t, r.Err)
	require.NotNil(t, r.Conn)
	require.Equal(t, handle, r.Conn.Handle())

	addr, err := r.Conn.Address()
	require.NoError(t, err)
	require.Equal(t, peer, addr.Address)

	role, err := r.Conn.Role()
	require.NoError(t, err)
	require.Equal(t, uint8(hci.RoleMaster), role)

	var stillConnecting bool
	require.NoError(t, m.call(func() error {
		_, stillConnecting = m.connectingClassic[peer]
		return nil
	}))
	require.False(t, stillConnecting, "address must leave the Connecting Set once Connection Complete lands")
}

// TestDisconnectLeavesPendingInboundDataReadable exercises S4: a
// Disconnection Complete arriving while a reassembled PDU is still queued
// must not discard that PDU, even though the connection is now gone from
// the table.
func TestDisconnectLeavesPendingInboundDataReadable(t *testing.T) {
	fc := newFakeController()
	local := hci.Address{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	m := startManager(t, fc, local)

	peer := hci.Address{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	const handle uint16 = 0x0041

	fc.onCommand = func(opcode uint16, params []byte) {
		require.Equal(t, cmd.OpCreateConnection, opcode)
		fc.queueEvent(buildCommandStatus(opcode, 0x00))
		fc.queueEvent(buildConnectionComplete(0x00, handle, peer))
	}

	results := make(chan ConnectResult, 1)
	require.NoError(t, m.CreateConnection(peer, func(r ConnectResult) { results <- r }))
	r := waitResult(t, results)
	require.NoError(t, r.Err)
	conn := r.Conn

	inbound, err := conn.Inbound()
	require.NoError(t, err)

	payload := []byte("hello")
	fc.queueACL(handle, 0x0040, payload)
	wantPDU := make([]byte, 4+len(payload))
	hci.BuildL2CAPHeader(wantPDU[:4], len(payload), 0x0040)
	copy(wantPDU[4:], payload)

	select {
	case <-inbound.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reassembled inbound PDU")
	}
	require.Equal(t, 1, inbound.Len())

	disconnected := make(chan uint8, 1)
	require.NoError(t, conn.RegisterDisconnectCallback(func(reason uint8) { disconnected <- reason }))

	fc.onCommand = nil
	fc.queueEvent(buildDisconnectionComplete(0x00, handle, 0x13))

	select {
	case reason := <-disconnected:
		require.Equal(t, uint8(0x13), reason)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for disconnect callback")
	}

	require.True(t, conn.Disconnected())

	pdu, ok := inbound.TryPop()
	require.True(t, ok, "PDU queued before disconnect must still be readable afterward")
	require.Equal(t, wantPDU, []byte(pdu))

	_, stillInTable := m.table.Lookup(handle)
	require.False(t, stillInTable)
}

// TestLEConnectionUpdateParamsValidate exercises S5's bounds checks
// directly: every field the controller would otherwise reject is checked
// synchronously before any command is built.
func TestLEConnectionUpdateParamsValidate(t *testing.T) {
	valid := LEConnectionUpdateParams{
		IntervalMin:        0x0010,
		IntervalMax:        0x0020,
		Latency:            0,
		SupervisionTimeout: 0x0100,
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name string
		p    LEConnectionUpdateParams
	}{
		{"interval min below floor", LEConnectionUpdateParams{IntervalMin: 0x0005, IntervalMax: 0x0020, SupervisionTimeout: 0x0100}},
		{"interval max above ceiling", LEConnectionUpdateParams{IntervalMin: 0x0010, IntervalMax: 0x0C81, SupervisionTimeout: 0x0100}},
		{"interval min above max", LEConnectionUpdateParams{IntervalMin: 0x0020, IntervalMax: 0x0010, SupervisionTimeout: 0x0100}},
		{"latency above ceiling", LEConnectionUpdateParams{IntervalMin: 0x0010, IntervalMax: 0x0020, Latency: 0x01F4, SupervisionTimeout: 0x0100}},
		{"timeout below floor", LEConnectionUpdateParams{IntervalMin: 0x0010, IntervalMax: 0x0020, SupervisionTimeout: 0x0009}},
		{"timeout above ceiling", LEConnectionUpdateParams{IntervalMin: 0x0010, IntervalMax: 0x0020, SupervisionTimeout: 0x0C81}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.p.Validate(), ErrInvalidConnectionParams)
		})
	}
}

// TestLEConnectionUpdateRejectsInvalidParamsBeforeSendingAnyCommand
// exercises S5 end to end: an out-of-range request against a live LE
// connection must fail synchronously, without ever reaching the
// controller, while a valid request is sent and its eventual completion
// reaches the caller's callback.
func TestLEConnectionUpdateRejectsInvalidParamsBeforeSendingAnyCommand(t *testing.T) {
	fc := newFakeController()
	local := hci.Address{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	m := startManager(t, fc, local)

	peer := hci.AddressWithType{Address: hci.Address{0x09, 0x08, 0x07, 0x06, 0x05, 0x04}, Type: hci.AddressTypePublic}
	const handle uint16 = 0x0042

	fc.onCommand = func(opcode uint16, params []byte) {
		require.Equal(t, cmd.OpLECreateConnection, opcode)
		fc.queueEvent(buildCommandStatus(opcode, 0x00))
		fc.queueEvent(buildLEConnectionComplete(0x00, handle, hci.RoleMaster, peer))
	}

	results := make(chan ConnectResult, 1)
	require.NoError(t, m.CreateLeConnection(peer, LEConnectionUpdateParams{
		IntervalMin: 0x0010, IntervalMax: 0x0020, SupervisionTimeout: 0x0100,
	}, func(r ConnectResult) { results <- r }))
	r := waitResult(t, results)
	require.NoError(t, r.Err)
	conn := r.Conn

	var commandsSeen []uint16
	fc.onCommand = func(opcode uint16, params []byte) { commandsSeen = append(commandsSeen, opcode) }

	invalid := LEConnectionUpdateParams{IntervalMin: 0x0001, IntervalMax: 0x0020, SupervisionTimeout: 0x0100}
	err := conn.LEConnectionUpdate(invalid, func(status uint8) {})
	require.ErrorIs(t, err, ErrInvalidConnectionParams)
	require.Empty(t, commandsSeen, "an invalid request must never reach the controller")

	updateDone := make(chan uint8, 1)
	valid := LEConnectionUpdateParams{IntervalMin: 0x0010, IntervalMax: 0x0020, SupervisionTimeout: 0x0100}
	fc.onCommand = func(opcode uint16, params []byte) {
		require.Equal(t, cmd.OpLEConnectionUpdate, opcode)
		fc.queueEvent(buildCommandStatus(opcode, 0x00))
		fc.queueEvent(buildLEConnectionUpdateComplete(0x00, handle))
	}
	require.NoError(t, conn.LEConnectionUpdate(valid, func(status uint8) { updateDone <- status }))

	select {
	case status := <-updateDone:
		require.Equal(t, uint8(0x00), status)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for LE connection update completion")
	}
}
