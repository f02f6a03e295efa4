// Package evt provides zero-copy views over HCI event packets, following
// the teacher's byte-slice-with-WErr-accessor idiom (aclpkt.go's ACLView
// generalizes the same pattern to ACL data packets). Only the events the
// ACL manager itself consumes are modeled; advertising/GAP report parsing
// lived here in the teacher and is dropped along with scanning.
package evt

// Event codes [Vol 2, Part E, 7.7].
const (
	InquiryCompleteCode          = 0x01
	ConnectionCompleteCode       = 0x03
	ConnectionRequestCode        = 0x04
	DisconnectionCompleteCode    = 0x05
	AuthenticationCompleteCode   = 0x06
	EncryptionChangeCode         = 0x08
	ReadRemoteSupportedFeaturesCompleteCode  = 0x0B
	ReadRemoteVersionInformationCompleteCode = 0x0C
	QosSetupCompleteCode         = 0x0D
	CommandCompleteCode          = 0x0E
	CommandStatusCode            = 0x0F
	RoleChangeCode               = 0x12
	NumberOfCompletedPacketsCode = 0x13
	ModeChangeCode               = 0x14
	ReadClockOffsetCompleteCode  = 0x1C
	ConnectionPacketTypeChangedCode = 0x1D
	FlowSpecificationCompleteCode   = 0x21
	ReadRemoteExtendedFeaturesCompleteCode = 0x23
	LEMetaEventCode              = 0x3E
)

// LE Meta subevent codes [Vol 2, Part E, 7.7.65].
const (
	LEConnectionCompleteSubcode         = 0x01
	LEConnectionUpdateCompleteSubcode   = 0x03
	LEEnhancedConnectionCompleteSubcode = 0x0A
)

func (e CommandComplete) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandComplete) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e CommandComplete) ReturnParameters() []byte {
	v, _ := e.ReturnParametersWErr()
	return v
}

// Per-spec [Vol 2, Part E, 7.7.19], the packet structure should be:
//
//     NumOfHandle, HandleA, HandleB, CompPktNumA, CompPktNumB
//
// But we got the actual packet from BCM20702A1 with the following structure instead.
//
//     NumOfHandle, HandleA, CompPktNumA, HandleB, CompPktNumB
//              02,   40 00,       01 00,   41 00,       01 00

func (e NumberOfCompletedPackets) NumberOfHandles() uint8 {
	v, _ := e.NumberOfHandlesWErr()
	return v
}

func (e NumberOfCompletedPackets) ConnectionHandle(i int) uint16 {
	v, _ := e.ConnectionHandleWErr(i)
	return v
}

func (e NumberOfCompletedPackets) HCNumOfCompletedPackets(i int) uint16 {
	v, _ := e.HCNumOfCompletedPacketsWErr(i)
	return v
}
