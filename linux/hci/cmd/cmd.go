// Package cmd provides hand-written builders for the HCI commands the ACL
// manager issues, following the same byte-slice encoding idiom as
// aclpkt.go's BuildACLHeader rather than a generated command table: the
// command surface here is narrow enough (connection establishment,
// teardown, and per-handle link-policy requests) that a generator would
// be solving a problem the manager doesn't have.
package cmd

import "encoding/binary"

func opcode(ogf, ocf uint16) uint16 { return (ogf << 10) | ocf }

// Opcodes for every command the manager core issues [Vol 2, Part E, 7].
var (
	OpReset                   = opcode(0x03, 0x0003)
	OpReadBufferSize          = opcode(0x04, 0x0005)
	OpReadBDADDR              = opcode(0x04, 0x0009)
	OpCreateConnection        = opcode(0x01, 0x0005)
	OpDisconnect              = opcode(0x01, 0x0006)
	OpCreateConnectionCancel  = opcode(0x01, 0x0008)
	OpAcceptConnectionRequest = opcode(0x01, 0x0009)
	OpRejectConnectionRequest = opcode(0x01, 0x000A)
	OpLESetRandomAddress      = opcode(0x08, 0x0005)
	OpLEReadBufferSize        = opcode(0x08, 0x0002)
	OpLECreateConnection      = opcode(0x08, 0x000D)
	OpLECreateConnCancel      = opcode(0x08, 0x000E)
	OpLEConnectionUpdate      = opcode(0x08, 0x0013)
	OpLEExtCreateConnection   = opcode(0x08, 0x0043)
	OpLEReadLocalSupportedFeatures = opcode(0x08, 0x0003)

	// Link Control (OGF 0x01) per-handle commands.
	OpChangeConnectionPacketType   = opcode(0x01, 0x000F)
	OpAuthenticationRequested      = opcode(0x01, 0x0011)
	OpSetConnectionEncryption      = opcode(0x01, 0x0013)
	OpReadRemoteSupportedFeatures  = opcode(0x01, 0x001B)
	OpReadRemoteExtendedFeatures   = opcode(0x01, 0x001C)
	OpReadRemoteVersionInformation = opcode(0x01, 0x001D)
	OpReadClockOffset              = opcode(0x01, 0x001F)

	// Link Policy (OGF 0x02) per-handle commands.
	OpHoldMode                  = opcode(0x02, 0x0001)
	OpSniffMode                 = opcode(0x02, 0x0003)
	OpExitSniffMode             = opcode(0x02, 0x0004)
	OpQosSetup                  = opcode(0x02, 0x0007)
	OpRoleDiscovery              = opcode(0x02, 0x0009)
	OpReadLinkPolicySettings    = opcode(0x02, 0x000C)
	OpWriteLinkPolicySettings   = opcode(0x02, 0x000D)
	OpFlowSpecification         = opcode(0x02, 0x0010)
	OpSniffSubrating            = opcode(0x02, 0x0011)

	// Controller & Baseband (OGF 0x03) and Status Parameters (OGF 0x05)
	// per-handle commands.
	OpFlush                         = opcode(0x03, 0x0008)
	OpReadAutomaticFlushTimeout     = opcode(0x03, 0x0027)
	OpWriteAutomaticFlushTimeout    = opcode(0x03, 0x0028)
	OpReadLinkSupervisionTimeout    = opcode(0x03, 0x0036)
	OpWriteLinkSupervisionTimeout   = opcode(0x03, 0x0037)
	OpReadFailedContactCounter      = opcode(0x05, 0x0001)
	OpResetFailedContactCounter     = opcode(0x05, 0x0002)
	OpReadLinkQuality               = opcode(0x05, 0x0003)
	OpReadRSSI                      = opcode(0x05, 0x0005)
	OpReadAFHChannelMap             = opcode(0x05, 0x0006)
	OpReadClock                     = opcode(0x05, 0x0007)
	OpReadTransmitPowerLevel        = opcode(0x03, 0x002D)
)

// LE local feature bits returned by LE Read Local Supported Features
// [Vol 2, Part E, 7.8.3, Vol 6, Part B, 4.6].
const (
	LEFeatureExtendedAdvertising uint64 = 1 << 12
)

// LE PHY bits used by LE Extended Create Connection's Initiating_PHYs
// [Vol 2, Part E, 7.8.66].
const (
	LEPhy1M    uint8 = 0x01
	LEPhy2M    uint8 = 0x02
	LEPhyCoded uint8 = 0x04
)

// Reset [Vol 2, Part E, 7.3.2].
type Reset struct{}

func (Reset) OpCode() uint16        { return OpReset }
func (Reset) Len() int              { return 0 }
func (Reset) Marshal([]byte) error  { return nil }

// Disconnect [Vol 2, Part E, 7.1.6].
type Disconnect struct {
	ConnectionHandle uint16
	Reason           uint8
}

func (c Disconnect) OpCode() uint16 { return OpDisconnect }
func (c Disconnect) Len() int       { return 3 }
func (c Disconnect) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	b[2] = c.Reason
	return nil
}

// CreateConnection initiates a Classic (BR/EDR) connection
// [Vol 2, Part E, 7.1.5].
type CreateConnection struct {
	BDADDR               [6]byte
	PacketType           uint16
	PageScanRepetitionMode uint8
	ClockOffset          uint16
	AllowRoleSwitch      uint8
}

func (c CreateConnection) OpCode() uint16 { return OpCreateConnection }
func (c CreateConnection) Len() int       { return 13 }
func (c CreateConnection) Marshal(b []byte) error {
	copy(b[0:6], c.BDADDR[:])
	binary.LittleEndian.PutUint16(b[6:8], c.PacketType)
	b[8] = c.PageScanRepetitionMode
	b[9] = 0 // reserved
	binary.LittleEndian.PutUint16(b[10:12], c.ClockOffset)
	b[12] = c.AllowRoleSwitch
	return nil
}

// CreateConnectionCancel [Vol 2, Part E, 7.1.7].
type CreateConnectionCancel struct {
	BDADDR [6]byte
}

func (c CreateConnectionCancel) OpCode() uint16 { return OpCreateConnectionCancel }
func (c CreateConnectionCancel) Len() int       { return 6 }
func (c CreateConnectionCancel) Marshal(b []byte) error {
	copy(b[0:6], c.BDADDR[:])
	return nil
}

// AcceptConnectionRequest [Vol 2, Part E, 7.1.8].
type AcceptConnectionRequest struct {
	BDADDR [6]byte
	Role   uint8
}

func (c AcceptConnectionRequest) OpCode() uint16 { return OpAcceptConnectionRequest }
func (c AcceptConnectionRequest) Len() int        { return 7 }
func (c AcceptConnectionRequest) Marshal(b []byte) error {
	copy(b[0:6], c.BDADDR[:])
	b[6] = c.Role
	return nil
}

// RejectConnectionRequest [Vol 2, Part E, 7.1.9].
type RejectConnectionRequest struct {
	BDADDR [6]byte
	Reason uint8
}

func (c RejectConnectionRequest) OpCode() uint16 { return OpRejectConnectionRequest }
func (c RejectConnectionRequest) Len() int        { return 7 }
func (c RejectConnectionRequest) Marshal(b []byte) error {
	copy(b[0:6], c.BDADDR[:])
	b[6] = c.Reason
	return nil
}

// LESetRandomAddress [Vol 2, Part E, 7.8.4].
type LESetRandomAddress struct {
	RandomAddress [6]byte
}

func (c LESetRandomAddress) OpCode() uint16 { return OpLESetRandomAddress }
func (c LESetRandomAddress) Len() int        { return 6 }
func (c LESetRandomAddress) Marshal(b []byte) error {
	copy(b[0:6], c.RandomAddress[:])
	return nil
}

// LECreateConnection [Vol 2, Part E, 7.8.12].
type LECreateConnection struct {
	ScanInterval        uint16
	ScanWindow          uint16
	InitiatorFilterPolicy uint8
	PeerAddressType     uint8
	PeerAddress         [6]byte
	OwnAddressType      uint8
	ConnIntervalMin     uint16
	ConnIntervalMax     uint16
	ConnLatency         uint16
	SupervisionTimeout  uint16
	MinCELen            uint16
	MaxCELen            uint16
}

func (c LECreateConnection) OpCode() uint16 { return OpLECreateConnection }
func (c LECreateConnection) Len() int        { return 25 }
func (c LECreateConnection) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ScanInterval)
	binary.LittleEndian.PutUint16(b[2:4], c.ScanWindow)
	b[4] = c.InitiatorFilterPolicy
	b[5] = c.PeerAddressType
	copy(b[6:12], c.PeerAddress[:])
	b[12] = c.OwnAddressType
	binary.LittleEndian.PutUint16(b[13:15], c.ConnIntervalMin)
	binary.LittleEndian.PutUint16(b[15:17], c.ConnIntervalMax)
	binary.LittleEndian.PutUint16(b[17:19], c.ConnLatency)
	binary.LittleEndian.PutUint16(b[19:21], c.SupervisionTimeout)
	binary.LittleEndian.PutUint16(b[21:23], c.MinCELen)
	binary.LittleEndian.PutUint16(b[23:25], c.MaxCELen)
	return nil
}

// LECreateConnectionCancel [Vol 2, Part E, 7.8.13].
type LECreateConnectionCancel struct{}

func (LECreateConnectionCancel) OpCode() uint16       { return OpLECreateConnCancel }
func (LECreateConnectionCancel) Len() int             { return 0 }
func (LECreateConnectionCancel) Marshal([]byte) error { return nil }

// LEReadLocalSupportedFeatures [Vol 2, Part E, 7.8.3].
type LEReadLocalSupportedFeatures struct{}

func (LEReadLocalSupportedFeatures) OpCode() uint16       { return OpLEReadLocalSupportedFeatures }
func (LEReadLocalSupportedFeatures) Len() int             { return 0 }
func (LEReadLocalSupportedFeatures) Marshal([]byte) error { return nil }

// LEReadLocalSupportedFeaturesRP is the LE Read Local Supported Features
// command's return parameters: an 8-byte bitmask of LE feature support.
type LEReadLocalSupportedFeaturesRP struct {
	Status            uint8
	LESupportedFeatures uint64
}

func (rp *LEReadLocalSupportedFeaturesRP) Unmarshal(b []byte) error {
	if len(b) < 9 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.LESupportedFeatures = binary.LittleEndian.Uint64(b[1:9])
	return nil
}

// LEExtCreateConnection initiates an LE connection using the extended
// advertising create-connection command, the form required on controllers
// that advertise LE Extended Advertising [Vol 2, Part E, 7.8.66]. Only a
// single initiating PHY's parameters are carried, matching the manager
// core's 1M-PHY-only connection parameter surface.
type LEExtCreateConnection struct {
	InitiatorFilterPolicy uint8
	OwnAddressType        uint8
	PeerAddressType       uint8
	PeerAddress           [6]byte
	InitiatingPHYs        uint8
	ScanInterval          uint16
	ScanWindow            uint16
	ConnIntervalMin       uint16
	ConnIntervalMax       uint16
	ConnLatency           uint16
	SupervisionTimeout    uint16
	MinCELen              uint16
	MaxCELen              uint16
}

func (c LEExtCreateConnection) OpCode() uint16 { return OpLEExtCreateConnection }
func (c LEExtCreateConnection) Len() int       { return 10 + 16 }
func (c LEExtCreateConnection) Marshal(b []byte) error {
	b[0] = c.InitiatorFilterPolicy
	b[1] = c.OwnAddressType
	b[2] = c.PeerAddressType
	copy(b[3:9], c.PeerAddress[:])
	b[9] = c.InitiatingPHYs
	binary.LittleEndian.PutUint16(b[10:12], c.ScanInterval)
	binary.LittleEndian.PutUint16(b[12:14], c.ScanWindow)
	binary.LittleEndian.PutUint16(b[14:16], c.ConnIntervalMin)
	binary.LittleEndian.PutUint16(b[16:18], c.ConnIntervalMax)
	binary.LittleEndian.PutUint16(b[18:20], c.ConnLatency)
	binary.LittleEndian.PutUint16(b[20:22], c.SupervisionTimeout)
	binary.LittleEndian.PutUint16(b[22:24], c.MinCELen)
	binary.LittleEndian.PutUint16(b[24:26], c.MaxCELen)
	return nil
}

// LEConnectionUpdate [Vol 2, Part E, 7.8.18].
type LEConnectionUpdate struct {
	ConnectionHandle uint16
	ConnIntervalMin  uint16
	ConnIntervalMax  uint16
	ConnLatency      uint16
	SupervisionTimeout uint16
	MinCELen         uint16
	MaxCELen         uint16
}

func (c LEConnectionUpdate) OpCode() uint16 { return OpLEConnectionUpdate }
func (c LEConnectionUpdate) Len() int        { return 14 }
func (c LEConnectionUpdate) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	binary.LittleEndian.PutUint16(b[2:4], c.ConnIntervalMin)
	binary.LittleEndian.PutUint16(b[4:6], c.ConnIntervalMax)
	binary.LittleEndian.PutUint16(b[6:8], c.ConnLatency)
	binary.LittleEndian.PutUint16(b[8:10], c.SupervisionTimeout)
	binary.LittleEndian.PutUint16(b[10:12], c.MinCELen)
	binary.LittleEndian.PutUint16(b[12:14], c.MaxCELen)
	return nil
}

// ReadBufferSize [Vol 2, Part E, 7.4.5].
type ReadBufferSize struct{}

func (ReadBufferSize) OpCode() uint16       { return OpReadBufferSize }
func (ReadBufferSize) Len() int             { return 0 }
func (ReadBufferSize) Marshal([]byte) error { return nil }

// ReadBufferSizeRP is the Read Buffer Size command's return parameters.
type ReadBufferSizeRP struct {
	Status                   uint8
	HCACLDataPacketLength    uint16
	HCSynchronousDataPacketLength uint8
	HCTotalNumACLDataPackets uint16
	HCTotalNumSynchronousDataPackets uint16
}

func (rp *ReadBufferSizeRP) Unmarshal(b []byte) error {
	if len(b) < 8 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.HCACLDataPacketLength = binary.LittleEndian.Uint16(b[1:3])
	rp.HCSynchronousDataPacketLength = b[3]
	rp.HCTotalNumACLDataPackets = binary.LittleEndian.Uint16(b[4:6])
	rp.HCTotalNumSynchronousDataPackets = binary.LittleEndian.Uint16(b[6:8])
	return nil
}

// LEReadBufferSize [Vol 2, Part E, 7.8.2].
type LEReadBufferSize struct{}

func (LEReadBufferSize) OpCode() uint16       { return OpLEReadBufferSize }
func (LEReadBufferSize) Len() int             { return 0 }
func (LEReadBufferSize) Marshal([]byte) error { return nil }

// LEReadBufferSizeRP is the LE Read Buffer Size command's return parameters.
type LEReadBufferSizeRP struct {
	Status                  uint8
	HCLEDataPacketLength    uint16
	HCTotalNumLEDataPackets uint8
}

func (rp *LEReadBufferSizeRP) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.HCLEDataPacketLength = binary.LittleEndian.Uint16(b[1:3])
	rp.HCTotalNumLEDataPackets = b[3]
	return nil
}

// ReadBDADDR [Vol 2, Part E, 7.4.6].
type ReadBDADDR struct{}

func (ReadBDADDR) OpCode() uint16       { return OpReadBDADDR }
func (ReadBDADDR) Len() int             { return 0 }
func (ReadBDADDR) Marshal([]byte) error { return nil }

// ReadBDADDRRP is the Read BD_ADDR command's return parameters.
type ReadBDADDRRP struct {
	Status uint8
	BDADDR [6]byte
}

func (rp *ReadBDADDRRP) Unmarshal(b []byte) error {
	if len(b) < 7 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	copy(rp.BDADDR[:], b[1:7])
	return nil
}

// ChangeConnectionPacketType [Vol 2, Part E, 7.1.4]. Command-Status only;
// the controller reports the outcome later via Connection Packet Type
// Changed.
type ChangeConnectionPacketType struct {
	ConnectionHandle uint16
	PacketType       uint16
}

func (c ChangeConnectionPacketType) OpCode() uint16 { return OpChangeConnectionPacketType }
func (c ChangeConnectionPacketType) Len() int       { return 4 }
func (c ChangeConnectionPacketType) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	binary.LittleEndian.PutUint16(b[2:4], c.PacketType)
	return nil
}

// AuthenticationRequested [Vol 2, Part E, 7.1.15]. Command-Status only;
// completion arrives via Authentication Complete.
type AuthenticationRequested struct {
	ConnectionHandle uint16
}

func (c AuthenticationRequested) OpCode() uint16 { return OpAuthenticationRequested }
func (c AuthenticationRequested) Len() int       { return 2 }
func (c AuthenticationRequested) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// SetConnectionEncryption [Vol 2, Part E, 7.1.16]. Command-Status only;
// completion arrives via Encryption Change.
type SetConnectionEncryption struct {
	ConnectionHandle uint16
	EncryptionEnable uint8
}

func (c SetConnectionEncryption) OpCode() uint16 { return OpSetConnectionEncryption }
func (c SetConnectionEncryption) Len() int       { return 3 }
func (c SetConnectionEncryption) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	b[2] = c.EncryptionEnable
	return nil
}

// HoldMode [Vol 2, Part E, 7.2.1]. Command-Status only; completion arrives
// via Mode Change.
type HoldMode struct {
	ConnectionHandle    uint16
	HoldModeMaxInterval uint16
	HoldModeMinInterval uint16
}

func (c HoldMode) OpCode() uint16 { return OpHoldMode }
func (c HoldMode) Len() int       { return 6 }
func (c HoldMode) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	binary.LittleEndian.PutUint16(b[2:4], c.HoldModeMaxInterval)
	binary.LittleEndian.PutUint16(b[4:6], c.HoldModeMinInterval)
	return nil
}

// SniffMode [Vol 2, Part E, 7.2.2]. Command-Status only; completion
// arrives via Mode Change.
type SniffMode struct {
	ConnectionHandle uint16
	SniffMaxInterval uint16
	SniffMinInterval uint16
	SniffAttempt     uint16
	SniffTimeout     uint16
}

func (c SniffMode) OpCode() uint16 { return OpSniffMode }
func (c SniffMode) Len() int       { return 10 }
func (c SniffMode) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	binary.LittleEndian.PutUint16(b[2:4], c.SniffMaxInterval)
	binary.LittleEndian.PutUint16(b[4:6], c.SniffMinInterval)
	binary.LittleEndian.PutUint16(b[6:8], c.SniffAttempt)
	binary.LittleEndian.PutUint16(b[8:10], c.SniffTimeout)
	return nil
}

// ExitSniffMode [Vol 2, Part E, 7.2.3]. Command-Status only; completion
// arrives via Mode Change.
type ExitSniffMode struct {
	ConnectionHandle uint16
}

func (c ExitSniffMode) OpCode() uint16 { return OpExitSniffMode }
func (c ExitSniffMode) Len() int       { return 2 }
func (c ExitSniffMode) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// QosSetup [Vol 2, Part E, 7.2.6]. Command-Status only; completion
// arrives via QoS Setup Complete.
type QosSetup struct {
	ConnectionHandle uint16
	Flags            uint8
	ServiceType      uint8
	TokenRate        uint32
	PeakBandwidth    uint32
	Latency          uint32
	DelayVariation   uint32
}

func (c QosSetup) OpCode() uint16 { return OpQosSetup }
func (c QosSetup) Len() int       { return 20 }
func (c QosSetup) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	b[2] = c.Flags
	b[3] = c.ServiceType
	binary.LittleEndian.PutUint32(b[4:8], c.TokenRate)
	binary.LittleEndian.PutUint32(b[8:12], c.PeakBandwidth)
	binary.LittleEndian.PutUint32(b[12:16], c.Latency)
	binary.LittleEndian.PutUint32(b[16:20], c.DelayVariation)
	return nil
}

// RoleDiscovery [Vol 2, Part E, 7.2.7]. Command-Complete, synchronous.
type RoleDiscovery struct {
	ConnectionHandle uint16
}

func (c RoleDiscovery) OpCode() uint16 { return OpRoleDiscovery }
func (c RoleDiscovery) Len() int       { return 2 }
func (c RoleDiscovery) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// RoleDiscoveryRP is the Role Discovery command's return parameters.
type RoleDiscoveryRP struct {
	Status           uint8
	ConnectionHandle uint16
	CurrentRole      uint8
}

func (rp *RoleDiscoveryRP) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.CurrentRole = b[3]
	return nil
}

// ReadLinkPolicySettings [Vol 2, Part E, 7.2.9]. Command-Complete, sync.
type ReadLinkPolicySettings struct {
	ConnectionHandle uint16
}

func (c ReadLinkPolicySettings) OpCode() uint16 { return OpReadLinkPolicySettings }
func (c ReadLinkPolicySettings) Len() int       { return 2 }
func (c ReadLinkPolicySettings) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ReadLinkPolicySettingsRP is the Read Link Policy Settings command's
// return parameters.
type ReadLinkPolicySettingsRP struct {
	Status             uint8
	ConnectionHandle   uint16
	LinkPolicySettings uint16
}

func (rp *ReadLinkPolicySettingsRP) Unmarshal(b []byte) error {
	if len(b) < 5 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.LinkPolicySettings = binary.LittleEndian.Uint16(b[3:5])
	return nil
}

// WriteLinkPolicySettings [Vol 2, Part E, 7.2.10]. Command-Complete, sync.
type WriteLinkPolicySettings struct {
	ConnectionHandle   uint16
	LinkPolicySettings uint16
}

func (c WriteLinkPolicySettings) OpCode() uint16 { return OpWriteLinkPolicySettings }
func (c WriteLinkPolicySettings) Len() int       { return 4 }
func (c WriteLinkPolicySettings) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	binary.LittleEndian.PutUint16(b[2:4], c.LinkPolicySettings)
	return nil
}

// WriteLinkPolicySettingsRP is the Write Link Policy Settings command's
// return parameters.
type WriteLinkPolicySettingsRP struct {
	Status           uint8
	ConnectionHandle uint16
}

func (rp *WriteLinkPolicySettingsRP) Unmarshal(b []byte) error {
	if len(b) < 3 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	return nil
}

// FlowSpecification [Vol 2, Part E, 7.2.16]. Command-Status only;
// completion arrives via Flow Specification Complete.
type FlowSpecification struct {
	ConnectionHandle uint16
	Flags            uint8
	FlowDirection    uint8
	ServiceType      uint8
	TokenRate        uint32
	TokenBucketSize  uint32
	PeakBandwidth    uint32
	AccessLatency    uint32
}

func (c FlowSpecification) OpCode() uint16 { return OpFlowSpecification }
func (c FlowSpecification) Len() int       { return 21 }
func (c FlowSpecification) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	b[2] = c.Flags
	b[3] = c.FlowDirection
	b[4] = c.ServiceType
	binary.LittleEndian.PutUint32(b[5:9], c.TokenRate)
	binary.LittleEndian.PutUint32(b[9:13], c.TokenBucketSize)
	binary.LittleEndian.PutUint32(b[13:17], c.PeakBandwidth)
	binary.LittleEndian.PutUint32(b[17:21], c.AccessLatency)
	return nil
}

// SniffSubrating [Vol 2, Part E, 7.2.17]. Command-Complete, sync.
type SniffSubrating struct {
	ConnectionHandle uint16
	MaxLatency       uint16
	MinRemoteTimeout uint16
	MinLocalTimeout  uint16
}

func (c SniffSubrating) OpCode() uint16 { return OpSniffSubrating }
func (c SniffSubrating) Len() int       { return 8 }
func (c SniffSubrating) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	binary.LittleEndian.PutUint16(b[2:4], c.MaxLatency)
	binary.LittleEndian.PutUint16(b[4:6], c.MinRemoteTimeout)
	binary.LittleEndian.PutUint16(b[6:8], c.MinLocalTimeout)
	return nil
}

// SniffSubratingRP is the Sniff Subrating command's return parameters.
type SniffSubratingRP struct {
	Status           uint8
	ConnectionHandle uint16
}

func (rp *SniffSubratingRP) Unmarshal(b []byte) error {
	if len(b) < 3 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	return nil
}

// Flush [Vol 2, Part E, 7.3.4]. Command-Complete, sync.
type Flush struct {
	ConnectionHandle uint16
}

func (c Flush) OpCode() uint16 { return OpFlush }
func (c Flush) Len() int       { return 2 }
func (c Flush) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// FlushRP is the Flush command's return parameters.
type FlushRP struct {
	Status           uint8
	ConnectionHandle uint16
}

func (rp *FlushRP) Unmarshal(b []byte) error {
	if len(b) < 3 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	return nil
}

// ReadAutomaticFlushTimeout [Vol 2, Part E, 7.3.27]. Command-Complete, sync.
type ReadAutomaticFlushTimeout struct {
	ConnectionHandle uint16
}

func (c ReadAutomaticFlushTimeout) OpCode() uint16 { return OpReadAutomaticFlushTimeout }
func (c ReadAutomaticFlushTimeout) Len() int       { return 2 }
func (c ReadAutomaticFlushTimeout) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ReadAutomaticFlushTimeoutRP is the Read Automatic Flush Timeout
// command's return parameters.
type ReadAutomaticFlushTimeoutRP struct {
	Status           uint8
	ConnectionHandle uint16
	FlushTimeout     uint16
}

func (rp *ReadAutomaticFlushTimeoutRP) Unmarshal(b []byte) error {
	if len(b) < 5 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.FlushTimeout = binary.LittleEndian.Uint16(b[3:5])
	return nil
}

// WriteAutomaticFlushTimeout [Vol 2, Part E, 7.3.28]. Command-Complete,
// sync.
type WriteAutomaticFlushTimeout struct {
	ConnectionHandle uint16
	FlushTimeout     uint16
}

func (c WriteAutomaticFlushTimeout) OpCode() uint16 { return OpWriteAutomaticFlushTimeout }
func (c WriteAutomaticFlushTimeout) Len() int       { return 4 }
func (c WriteAutomaticFlushTimeout) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	binary.LittleEndian.PutUint16(b[2:4], c.FlushTimeout)
	return nil
}

// WriteAutomaticFlushTimeoutRP is the Write Automatic Flush Timeout
// command's return parameters.
type WriteAutomaticFlushTimeoutRP struct {
	Status           uint8
	ConnectionHandle uint16
}

func (rp *WriteAutomaticFlushTimeoutRP) Unmarshal(b []byte) error {
	if len(b) < 3 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	return nil
}

// ReadTransmitPowerLevel [Vol 2, Part E, 7.3.35]. Command-Complete, sync.
type ReadTransmitPowerLevel struct {
	ConnectionHandle uint16
	Type             uint8
}

func (c ReadTransmitPowerLevel) OpCode() uint16 { return OpReadTransmitPowerLevel }
func (c ReadTransmitPowerLevel) Len() int       { return 3 }
func (c ReadTransmitPowerLevel) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	b[2] = c.Type
	return nil
}

// ReadTransmitPowerLevelRP is the Read Transmit Power Level command's
// return parameters.
type ReadTransmitPowerLevelRP struct {
	Status              uint8
	ConnectionHandle    uint16
	TransmitPowerLevel  int8
}

func (rp *ReadTransmitPowerLevelRP) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.TransmitPowerLevel = int8(b[3])
	return nil
}

// ReadLinkSupervisionTimeout [Vol 2, Part E, 7.3.41]. Command-Complete,
// sync.
type ReadLinkSupervisionTimeout struct {
	ConnectionHandle uint16
}

func (c ReadLinkSupervisionTimeout) OpCode() uint16 { return OpReadLinkSupervisionTimeout }
func (c ReadLinkSupervisionTimeout) Len() int       { return 2 }
func (c ReadLinkSupervisionTimeout) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ReadLinkSupervisionTimeoutRP is the Read Link Supervision Timeout
// command's return parameters.
type ReadLinkSupervisionTimeoutRP struct {
	Status                 uint8
	ConnectionHandle       uint16
	LinkSupervisionTimeout uint16
}

func (rp *ReadLinkSupervisionTimeoutRP) Unmarshal(b []byte) error {
	if len(b) < 5 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.LinkSupervisionTimeout = binary.LittleEndian.Uint16(b[3:5])
	return nil
}

// WriteLinkSupervisionTimeout [Vol 2, Part E, 7.3.42]. Command-Complete,
// sync.
type WriteLinkSupervisionTimeout struct {
	ConnectionHandle       uint16
	LinkSupervisionTimeout uint16
}

func (c WriteLinkSupervisionTimeout) OpCode() uint16 { return OpWriteLinkSupervisionTimeout }
func (c WriteLinkSupervisionTimeout) Len() int       { return 4 }
func (c WriteLinkSupervisionTimeout) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	binary.LittleEndian.PutUint16(b[2:4], c.LinkSupervisionTimeout)
	return nil
}

// WriteLinkSupervisionTimeoutRP is the Write Link Supervision Timeout
// command's return parameters.
type WriteLinkSupervisionTimeoutRP struct {
	Status           uint8
	ConnectionHandle uint16
}

func (rp *WriteLinkSupervisionTimeoutRP) Unmarshal(b []byte) error {
	if len(b) < 3 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	return nil
}

// ReadFailedContactCounter [Vol 2, Part E, 7.5.1]. Command-Complete, sync.
type ReadFailedContactCounter struct {
	ConnectionHandle uint16
}

func (c ReadFailedContactCounter) OpCode() uint16 { return OpReadFailedContactCounter }
func (c ReadFailedContactCounter) Len() int       { return 2 }
func (c ReadFailedContactCounter) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ReadFailedContactCounterRP is the Read Failed Contact Counter command's
// return parameters.
type ReadFailedContactCounterRP struct {
	Status               uint8
	ConnectionHandle     uint16
	FailedContactCounter uint16
}

func (rp *ReadFailedContactCounterRP) Unmarshal(b []byte) error {
	if len(b) < 5 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.FailedContactCounter = binary.LittleEndian.Uint16(b[3:5])
	return nil
}

// ResetFailedContactCounter [Vol 2, Part E, 7.5.2]. Command-Complete, sync.
type ResetFailedContactCounter struct {
	ConnectionHandle uint16
}

func (c ResetFailedContactCounter) OpCode() uint16 { return OpResetFailedContactCounter }
func (c ResetFailedContactCounter) Len() int       { return 2 }
func (c ResetFailedContactCounter) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ResetFailedContactCounterRP is the Reset Failed Contact Counter
// command's return parameters.
type ResetFailedContactCounterRP struct {
	Status           uint8
	ConnectionHandle uint16
}

func (rp *ResetFailedContactCounterRP) Unmarshal(b []byte) error {
	if len(b) < 3 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	return nil
}

// ReadLinkQuality [Vol 2, Part E, 7.5.3]. Command-Complete, sync.
type ReadLinkQuality struct {
	ConnectionHandle uint16
}

func (c ReadLinkQuality) OpCode() uint16 { return OpReadLinkQuality }
func (c ReadLinkQuality) Len() int       { return 2 }
func (c ReadLinkQuality) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ReadLinkQualityRP is the Read Link Quality command's return parameters.
type ReadLinkQualityRP struct {
	Status           uint8
	ConnectionHandle uint16
	LinkQuality      uint8
}

func (rp *ReadLinkQualityRP) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.LinkQuality = b[3]
	return nil
}

// ReadRSSI [Vol 2, Part E, 7.5.4]. Command-Complete, sync.
type ReadRSSI struct {
	ConnectionHandle uint16
}

func (c ReadRSSI) OpCode() uint16 { return OpReadRSSI }
func (c ReadRSSI) Len() int       { return 2 }
func (c ReadRSSI) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ReadRSSIRP is the Read RSSI command's return parameters.
type ReadRSSIRP struct {
	Status           uint8
	ConnectionHandle uint16
	RSSI             int8
}

func (rp *ReadRSSIRP) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.RSSI = int8(b[3])
	return nil
}

// ReadAFHChannelMap [Vol 2, Part E, 7.5.7]. Command-Complete, sync.
type ReadAFHChannelMap struct {
	ConnectionHandle uint16
}

func (c ReadAFHChannelMap) OpCode() uint16 { return OpReadAFHChannelMap }
func (c ReadAFHChannelMap) Len() int       { return 2 }
func (c ReadAFHChannelMap) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ReadAFHChannelMapRP is the Read AFH Channel Map command's return
// parameters.
type ReadAFHChannelMapRP struct {
	Status           uint8
	ConnectionHandle uint16
	AFHMode          uint8
	AFHChannelMap    [10]byte
}

func (rp *ReadAFHChannelMapRP) Unmarshal(b []byte) error {
	if len(b) < 14 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.AFHMode = b[3]
	copy(rp.AFHChannelMap[:], b[4:14])
	return nil
}

// ReadClock [Vol 2, Part E, 7.5.8]. Command-Complete, sync. WhichClock
// selects the local (0x00) or piconet (0x01) clock.
type ReadClock struct {
	ConnectionHandle uint16
	WhichClock       uint8
}

func (c ReadClock) OpCode() uint16 { return OpReadClock }
func (c ReadClock) Len() int       { return 3 }
func (c ReadClock) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	b[2] = c.WhichClock
	return nil
}

// ReadClockRP is the Read Clock command's return parameters.
type ReadClockRP struct {
	Status           uint8
	ConnectionHandle uint16
	Clock            uint32
	Accuracy         uint16
}

func (rp *ReadClockRP) Unmarshal(b []byte) error {
	if len(b) < 9 {
		return errShortReturnParameters
	}
	rp.Status = b[0]
	rp.ConnectionHandle = binary.LittleEndian.Uint16(b[1:3])
	rp.Clock = binary.LittleEndian.Uint32(b[3:7])
	rp.Accuracy = binary.LittleEndian.Uint16(b[7:9])
	return nil
}

// ReadRemoteSupportedFeatures [Vol 2, Part E, 7.1.21]. Command-Status
// only; completion arrives via Read Remote Supported Features Complete.
type ReadRemoteSupportedFeatures struct {
	ConnectionHandle uint16
}

func (c ReadRemoteSupportedFeatures) OpCode() uint16 { return OpReadRemoteSupportedFeatures }
func (c ReadRemoteSupportedFeatures) Len() int       { return 2 }
func (c ReadRemoteSupportedFeatures) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ReadRemoteExtendedFeatures [Vol 2, Part E, 7.1.22]. Command-Status only;
// completion arrives via Read Remote Extended Features Complete.
type ReadRemoteExtendedFeatures struct {
	ConnectionHandle uint16
	PageNumber       uint8
}

func (c ReadRemoteExtendedFeatures) OpCode() uint16 { return OpReadRemoteExtendedFeatures }
func (c ReadRemoteExtendedFeatures) Len() int       { return 3 }
func (c ReadRemoteExtendedFeatures) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	b[2] = c.PageNumber
	return nil
}

// ReadRemoteVersionInformation [Vol 2, Part E, 7.1.23]. Command-Status
// only; completion arrives via Read Remote Version Information Complete.
type ReadRemoteVersionInformation struct {
	ConnectionHandle uint16
}

func (c ReadRemoteVersionInformation) OpCode() uint16 { return OpReadRemoteVersionInformation }
func (c ReadRemoteVersionInformation) Len() int       { return 2 }
func (c ReadRemoteVersionInformation) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// ReadClockOffset [Vol 2, Part E, 7.1.24]. Command-Status only;
// completion arrives via Read Clock Offset Complete.
type ReadClockOffset struct {
	ConnectionHandle uint16
}

func (c ReadClockOffset) OpCode() uint16 { return OpReadClockOffset }
func (c ReadClockOffset) Len() int       { return 2 }
func (c ReadClockOffset) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	return nil
}

// RawHandleCommand is a fallback builder for any per-handle opcode the
// named commands above don't cover: it takes only the connection handle
// plus already-encoded opcode-specific parameters.
type RawHandleCommand struct {
	Opcode           uint16
	ConnectionHandle uint16
	Params           []byte
}

func (c RawHandleCommand) OpCode() uint16 { return c.Opcode }
func (c RawHandleCommand) Len() int        { return 2 + len(c.Params) }
func (c RawHandleCommand) Marshal(b []byte) error {
	binary.LittleEndian.PutUint16(b[0:2], c.ConnectionHandle)
	copy(b[2:], c.Params)
	return nil
}
