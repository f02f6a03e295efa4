package hci

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ACLView is a zero-copy read-only view over one HCI ACL Data Packet's
// payload (the bytes following the 1-byte H4 type prefix), following the
// accessor idiom the teacher uses for evt.* views: no allocation. Only
// Valid checks bounds; the other accessors index the slice directly and
// assume a view that Valid accepted [Vol 2, Part E, 5.4.2].
type ACLView []byte

// ErrShortACLPacket is returned by Valid when the underlying slice is too
// short for the 4-byte header or for the data length it declares.
var ErrShortACLPacket = errors.New("hci: ACL packet shorter than its header")

// Valid reports whether the view is long enough to contain the 4-byte ACL
// header and whatever DataLen declares.
func (a ACLView) Valid() error {
	if len(a) < 4 {
		return ErrShortACLPacket
	}
	if len(a[4:]) < a.DataLen() {
		return ErrShortACLPacket
	}
	return nil
}

// Handle returns the 12-bit connection handle.
func (a ACLView) Handle() uint16 {
	return binary.LittleEndian.Uint16(a[0:2]) & HandleMask
}

// PB returns the 2-bit packet-boundary flag.
func (a ACLView) PB() uint8 {
	return uint8(a[1]>>4) & 0x3
}

// BC returns the 2-bit broadcast flag.
func (a ACLView) BC() uint8 {
	return uint8(a[1]>>6) & 0x3
}

// DataLen returns the declared little-endian payload length.
func (a ACLView) DataLen() int {
	return int(binary.LittleEndian.Uint16(a[2:4]))
}

// Payload returns the packet's payload bytes (not copied).
func (a ACLView) Payload() []byte {
	return a[4 : 4+a.DataLen()]
}

// BuildACLHeader writes the 4-byte ACL header for a fragment carrying
// payloadLen bytes with the given handle and packet-boundary flag into
// dst[:4]. The broadcast flag is always POINT_TO_POINT (§4.C).
func BuildACLHeader(dst []byte, handle uint16, pb uint8, payloadLen int) {
	flags := (uint16(pb) << 4) | (uint16(BcfPointToPoint) << 6)
	binary.LittleEndian.PutUint16(dst[0:2], (handle&HandleMask)|(flags<<8))
	binary.LittleEndian.PutUint16(dst[2:4], uint16(payloadLen))
}

// L2CAPHeaderView is a zero-copy view over the 4-byte L2CAP basic (B-frame)
// header that prefixes the payload of the FIRST fragment of a PDU
// [Vol 3, Part A, 3.1].
type L2CAPHeaderView []byte

// ErrShortL2CAPHeader is returned when fewer than 4 bytes are available.
var ErrShortL2CAPHeader = errors.New("hci: payload shorter than the L2CAP basic header")

// Len returns the declared L2CAP PDU length (information payload only,
// not counting this header).
func (h L2CAPHeaderView) Len() (int, error) {
	if len(h) < L2CAPBasicHeaderLen {
		return 0, ErrShortL2CAPHeader
	}
	return int(binary.LittleEndian.Uint16(h[0:2])), nil
}

// CID returns the destination L2CAP channel ID.
func (h L2CAPHeaderView) CID() (uint16, error) {
	if len(h) < L2CAPBasicHeaderLen {
		return 0, ErrShortL2CAPHeader
	}
	return binary.LittleEndian.Uint16(h[2:4]), nil
}

// BuildL2CAPHeader writes the 4-byte L2CAP basic header into dst[:4].
func BuildL2CAPHeader(dst []byte, pduLen int, cid uint16) {
	binary.LittleEndian.PutUint16(dst[0:2], uint16(pduLen))
	binary.LittleEndian.PutUint16(dst[2:4], cid)
}
