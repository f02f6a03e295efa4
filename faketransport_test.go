package acl

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/go-ble/acl/linux/hci"
	"github.com/go-ble/acl/linux/hci/evt"
)

// fakeController stands in for a real HCI transport in tests: every Write
// is one discrete packet, the same one-write-per-packet contract
// controller.Handler's roundTrip and SendACL already rely on, and replies
// queued with queueEvent/queueACL are delivered back through Read in
// arrival order.
type fakeController struct {
	mu        sync.Mutex
	outbox    [][]byte
	ready     chan struct{}
	closed    bool
	onCommand func(opcode uint16, params []byte)
}

func newFakeController() *fakeController {
	return &fakeController{ready: make(chan struct{}, 64)}
}

func (f *fakeController) Write(p []byte) (int, error) {
	if len(p) >= 4 && p[0] == hci.PktTypeCommand {
		opcode := binary.LittleEndian.Uint16(p[1:3])
		plen := int(p[3])
		if f.onCommand != nil {
			f.onCommand(opcode, p[4:4+plen])
		}
	}
	return len(p), nil
}

func (f *fakeController) queuePacket(pkt []byte) {
	f.mu.Lock()
	f.outbox = append(f.outbox, pkt)
	f.mu.Unlock()
	select {
	case f.ready <- struct{}{}:
	default:
	}
}

// queueEvent enqueues an HCI event packet for the next Read.
func (f *fakeController) queueEvent(payload []byte) {
	f.queuePacket(append([]byte{hci.PktTypeEvent}, payload...))
}

// queueACL enqueues one complete, unfragmented L2CAP PDU as a single
// inbound ACL data packet for handle.
func (f *fakeController) queueACL(handle uint16, cid uint16, data []byte) {
	l2cap := make([]byte, 4+len(data))
	hci.BuildL2CAPHeader(l2cap[:4], len(data), cid)
	copy(l2cap[4:], data)

	body := make([]byte, 4+len(l2cap))
	hci.BuildACLHeader(body[:4], handle, hci.PbfFirstAutoFlushable, len(l2cap))
	copy(body[4:], l2cap)

	f.queuePacket(append([]byte{hci.PktTypeACLData}, body...))
}

func (f *fakeController) Read(p []byte) (int, error) {
	for {
		f.mu.Lock()
		if len(f.outbox) > 0 {
			pkt := f.outbox[0]
			f.outbox = f.outbox[1:]
			f.mu.Unlock()
			return copy(p, pkt), nil
		}
		closed := f.closed
		f.mu.Unlock()
		if closed {
			return 0, io.EOF
		}
		<-f.ready
	}
}

func (f *fakeController) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	select {
	case f.ready <- struct{}{}:
	default:
	}
	return nil
}

func buildCommandComplete(opcode uint16, rp []byte) []byte {
	b := make([]byte, 5+len(rp))
	b[0] = evt.CommandCompleteCode
	b[1] = byte(3 + len(rp))
	b[2] = 1 // NumHCICommandPackets
	binary.LittleEndian.PutUint16(b[3:5], opcode)
	copy(b[5:], rp)
	return b
}

func buildCommandStatus(opcode uint16, status uint8) []byte {
	b := make([]byte, 6)
	b[0] = evt.CommandStatusCode
	b[1] = 4
	b[2] = status
	b[3] = 1 // NumHCICommandPackets
	binary.LittleEndian.PutUint16(b[4:6], opcode)
	return b
}

func buildConnectionComplete(status uint8, handle uint16, addr hci.Address) []byte {
	b := make([]byte, 13)
	b[0] = evt.ConnectionCompleteCode
	b[1] = 11
	b[2] = status
	binary.LittleEndian.PutUint16(b[3:5], handle)
	for i := 0; i < 6; i++ {
		b[5+i] = addr[5-i]
	}
	b[11] = 0 // link type: ACL
	b[12] = 0 // encryption disabled
	return b
}

func buildDisconnectionComplete(status uint8, handle uint16, reason uint8) []byte {
	b := make([]byte, 6)
	b[0] = evt.DisconnectionCompleteCode
	b[1] = 4
	b[2] = status
	binary.LittleEndian.PutUint16(b[3:5], handle)
	b[5] = reason
	return b
}

func buildLEConnectionComplete(status uint8, handle uint16, role uint8, peer hci.AddressWithType) []byte {
	b := make([]byte, 20)
	b[0] = evt.LEMetaEventCode
	b[1] = 18
	b[2] = 0x01 // LEConnectionCompleteSubcode
	b[3] = status
	binary.LittleEndian.PutUint16(b[4:6], handle)
	b[6] = role
	b[7] = uint8(peer.Type)
	for i := 0; i < 6; i++ {
		b[8+i] = peer.Address[5-i]
	}
	binary.LittleEndian.PutUint16(b[14:16], 0x0010) // ConnInterval
	binary.LittleEndian.PutUint16(b[16:18], 0x0000) // ConnLatency
	binary.LittleEndian.PutUint16(b[18:20], 0x0100) // SupervisionTimeout
	return b
}

func buildLEConnectionUpdateComplete(status uint8, handle uint16) []byte {
	b := make([]byte, 12)
	b[0] = evt.LEMetaEventCode
	b[1] = 10
	b[2] = 0x03 // LEConnectionUpdateCompleteSubcode
	b[3] = status
	binary.LittleEndian.PutUint16(b[4:6], handle)
	binary.LittleEndian.PutUint16(b[6:8], 0x0010)
	binary.LittleEndian.PutUint16(b[8:10], 0x0000)
	return b
}
