// Package fragment implements Component C of the ACL manager: splitting a
// single outbound L2CAP PDU into the ordered sequence of ACL fragments the
// controller's buffer size allows, grounded on the fragmentation loop in
// the teacher's connection.Conn.writePDU [Vol 3, Part A, 7.2.1].
package fragment

import (
	"github.com/go-ble/acl/linux/hci"
)

// Fragmenter is a lazy producer: the scheduler pulls one fragment at a
// time via Next rather than the fragmenter building the whole sequence
// up front, so a tick can stop mid-PDU if credits run out.
type Fragmenter struct {
	handle     uint16
	maxPayload int
	remaining  []byte
	emitted    int
}

// New starts fragmenting pdu for handle, respecting the controller's
// maximum ACL payload size maxPayload.
func New(handle uint16, pdu []byte, maxPayload int) *Fragmenter {
	return &Fragmenter{handle: handle, maxPayload: maxPayload, remaining: pdu}
}

// Done reports whether every fragment of the PDU has been emitted.
func (f *Fragmenter) Done() bool {
	return f.emitted > 0 && len(f.remaining) == 0
}

// Count returns the total number of fragments this PDU will require,
// ⌈len(pdu)/maxPayload⌉, at least 1 for a zero-length PDU.
func Count(pduLen, maxPayload int) int {
	if pduLen == 0 {
		return 1
	}
	return (pduLen + maxPayload - 1) / maxPayload
}

// Next builds the next ACL fragment (4-byte header plus payload) and
// advances the fragmenter. ok is false once every fragment has been
// produced. The first fragment carries PbfFirstAutoFlushable, every
// subsequent one PbfContinuingFragment; the broadcast flag is always
// point-to-point (§4.C).
func (f *Fragmenter) Next() (pkt []byte, ok bool) {
	if len(f.remaining) == 0 && f.emitted > 0 {
		return nil, false
	}

	n := len(f.remaining)
	if n > f.maxPayload {
		n = f.maxPayload
	}

	pb := uint8(hci.PbfContinuingFragment)
	if f.emitted == 0 {
		pb = hci.PbfFirstAutoFlushable
	}

	pkt = make([]byte, 4+n)
	hci.BuildACLHeader(pkt, f.handle, pb, n)
	copy(pkt[4:], f.remaining[:n])

	f.remaining = f.remaining[n:]
	f.emitted++
	return pkt, true
}
