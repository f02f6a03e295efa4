package hci

// HCI packet types, the 1-byte H4 framing prefix in front of every packet
// exchanged with the controller [Vol 4, Part A, 2].
const (
	PktTypeCommand uint8 = 0x01
	PktTypeACLData uint8 = 0x02
	PktTypeSCOData uint8 = 0x03
	PktTypeEvent   uint8 = 0x04
	PktTypeVendor  uint8 = 0xFF
)

// Packet boundary flags of an HCI ACL Data Packet [Vol 2, Part E, 5.4.2].
const (
	PbfFirstNonAutoFlushable = 0x00 // Controller-to-host start of a non-automatically-flushable PDU.
	PbfContinuingFragment    = 0x01 // Continuation of a PDU already in progress.
	PbfFirstAutoFlushable    = 0x02 // Host-to-controller (and most controller-to-host) start of a PDU.
	PbfCompletePDU           = 0x03 // A complete, unfragmented PDU.
)

// Broadcast flags, bits 6-7 of the handle field's MSB. The core never
// broadcasts; every outbound fragment is point-to-point.
const (
	BcfPointToPoint = 0x00
)

// HandleMask isolates the 12-bit connection handle from the 4 flag bits
// that share the first two octets of the ACL header.
const HandleMask = 0x0FFF

// ReservedHandle is silently dropped on ingress (§3); observed in vendor
// traces as a sentinel the controller uses for packets with no real
// connection association.
const ReservedHandle uint16 = 0xEDC

// Link roles, shared by Classic and LE connection-complete events.
const (
	RoleMaster = 0x00
	RoleSlave  = 0x01
)

// Transport distinguishes the Classic (BR/EDR) radio from Low Energy.
type Transport uint8

const (
	TransportClassic Transport = iota
	TransportLE
)

func (t Transport) String() string {
	if t == TransportLE {
		return "le"
	}
	return "classic"
}

// L2CAP basic (B-frame) header length: 2 bytes PDU length + 2 bytes CID,
// prefixed onto the payload of the FIRST fragment of every PDU.
const L2CAPBasicHeaderLen = 4

// InboundQueueCapacity and OutboundQueueCapacity are the bounded FIFO sizes
// mandated for every connection's reassembled-inbound and
// awaiting-fragmentation-outbound queues (§3).
const (
	InboundQueueCapacity  = 10
	OutboundQueueCapacity = 10
)
