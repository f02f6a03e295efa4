package evt

// CommandComplete [Vol 2, Part E, 7.7.14].
type CommandComplete []byte

// CommandStatus [Vol 2, Part E, 7.7.15].
type CommandStatus []byte

func (e CommandStatus) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}
func (e CommandStatus) StatusWErr() (uint8, error) { return getByte(e, 0, 0xff) }

func (e CommandStatus) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}
func (e CommandStatus) NumHCICommandPacketsWErr() (uint8, error) { return getByte(e, 1, 0) }

func (e CommandStatus) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}
func (e CommandStatus) CommandOpcodeWErr() (uint16, error) { return getUint16LE(e, 2, 0xffff) }

func (e CommandStatus) Valid() bool { return len(e) >= 4 }

// NumberOfCompletedPackets [Vol 2, Part E, 7.7.19].
type NumberOfCompletedPackets []byte

// ConnectionComplete is the Classic (BR/EDR) connection establishment
// result [Vol 2, Part E, 7.7.3].
type ConnectionComplete []byte

func (e ConnectionComplete) Status() uint8             { v, _ := getByte(e, 0, 0xff); return v }
func (e ConnectionComplete) ConnectionHandle() uint16  { v, _ := getUint16LE(e, 1, 0xffff); return v }
func (e ConnectionComplete) BDADDR() [6]byte {
	b, _ := getBytes(e, 3, 6)
	var a [6]byte
	copy(a[:], b)
	return a
}
func (e ConnectionComplete) LinkType() uint8      { v, _ := getByte(e, 9, 0); return v }
func (e ConnectionComplete) EncryptionEnabled() uint8 { v, _ := getByte(e, 10, 0); return v }

// ConnectionRequest signals an incoming Classic connection the host must
// accept or reject [Vol 2, Part E, 7.7.4].
type ConnectionRequest []byte

func (e ConnectionRequest) BDADDR() [6]byte {
	b, _ := getBytes(e, 0, 6)
	var a [6]byte
	copy(a[:], b)
	return a
}
func (e ConnectionRequest) ClassOfDevice() [3]byte {
	b, _ := getBytes(e, 6, 3)
	var a [3]byte
	copy(a[:], b)
	return a
}
func (e ConnectionRequest) LinkType() uint8 { v, _ := getByte(e, 9, 0); return v }

// DisconnectionComplete [Vol 2, Part E, 7.7.5].
type DisconnectionComplete []byte

func (e DisconnectionComplete) Status() uint8            { v, _ := getByte(e, 0, 0xff); return v }
func (e DisconnectionComplete) ConnectionHandle() uint16 { v, _ := getUint16LE(e, 1, 0xffff); return v }
func (e DisconnectionComplete) Reason() uint8            { v, _ := getByte(e, 3, 0); return v }

// EncryptionChange [Vol 2, Part E, 7.7.8], one of the per-handle management
// events the manager forwards to a registered CommandSink verbatim rather
// than modeling itself; pairing and the rest of the security event
// surface live above this layer.
type EncryptionChange []byte

func (e EncryptionChange) Status() uint8            { v, _ := getByte(e, 0, 0xff); return v }
func (e EncryptionChange) ConnectionHandle() uint16 { v, _ := getUint16LE(e, 1, 0xffff); return v }
func (e EncryptionChange) EncryptionEnabled() uint8 { v, _ := getByte(e, 3, 0); return v }

// AuthenticationComplete [Vol 2, Part E, 7.7.6], delivered to the
// CommandSink registered for the connection handle it names rather than
// modeled as a pairing/security event in its own right.
type AuthenticationComplete []byte

func (e AuthenticationComplete) Status() uint8            { v, _ := getByte(e, 0, 0xff); return v }
func (e AuthenticationComplete) ConnectionHandle() uint16 { v, _ := getUint16LE(e, 1, 0xffff); return v }

// ReadRemoteSupportedFeaturesComplete [Vol 2, Part E, 7.7.11].
type ReadRemoteSupportedFeaturesComplete []byte

func (e ReadRemoteSupportedFeaturesComplete) Status() uint8 { v, _ := getByte(e, 0, 0xff); return v }
func (e ReadRemoteSupportedFeaturesComplete) ConnectionHandle() uint16 {
	v, _ := getUint16LE(e, 1, 0xffff)
	return v
}
func (e ReadRemoteSupportedFeaturesComplete) LMPFeatures() [8]byte {
	b, _ := getBytes(e, 3, 8)
	var a [8]byte
	copy(a[:], b)
	return a
}

// ReadRemoteVersionInformationComplete [Vol 2, Part E, 7.7.12].
type ReadRemoteVersionInformationComplete []byte

func (e ReadRemoteVersionInformationComplete) Status() uint8 { v, _ := getByte(e, 0, 0xff); return v }
func (e ReadRemoteVersionInformationComplete) ConnectionHandle() uint16 {
	v, _ := getUint16LE(e, 1, 0xffff)
	return v
}
func (e ReadRemoteVersionInformationComplete) Version() uint8 { v, _ := getByte(e, 3, 0); return v }
func (e ReadRemoteVersionInformationComplete) ManufacturerName() uint16 {
	v, _ := getUint16LE(e, 4, 0)
	return v
}
func (e ReadRemoteVersionInformationComplete) Subversion() uint16 {
	v, _ := getUint16LE(e, 6, 0)
	return v
}

// QosSetupComplete [Vol 2, Part E, 7.7.13].
type QosSetupComplete []byte

func (e QosSetupComplete) Status() uint8            { v, _ := getByte(e, 0, 0xff); return v }
func (e QosSetupComplete) ConnectionHandle() uint16 { v, _ := getUint16LE(e, 1, 0xffff); return v }

// RoleChange [Vol 2, Part E, 7.7.12, renumbered 7.7.9 in later revisions],
// keyed by BDADDR rather than connection handle: the role change can
// arrive before the connection complete event names a handle for this
// address, matching the original's handling of role-change-by-address.
type RoleChange []byte

func (e RoleChange) Status() uint8 { v, _ := getByte(e, 0, 0xff); return v }
func (e RoleChange) BDADDR() [6]byte {
	b, _ := getBytes(e, 1, 6)
	var a [6]byte
	copy(a[:], b)
	return a
}
func (e RoleChange) NewRole() uint8 { v, _ := getByte(e, 7, 0); return v }

// ModeChange [Vol 2, Part E, 7.7.20], delivered for Hold/Sniff/Exit-Sniff
// Mode completion.
type ModeChange []byte

func (e ModeChange) Status() uint8            { v, _ := getByte(e, 0, 0xff); return v }
func (e ModeChange) ConnectionHandle() uint16 { v, _ := getUint16LE(e, 1, 0xffff); return v }
func (e ModeChange) CurrentMode() uint8       { v, _ := getByte(e, 3, 0); return v }
func (e ModeChange) Interval() uint16         { v, _ := getUint16LE(e, 4, 0); return v }

// ConnectionPacketTypeChanged [Vol 2, Part E, 7.7.29].
type ConnectionPacketTypeChanged []byte

func (e ConnectionPacketTypeChanged) Status() uint8 { v, _ := getByte(e, 0, 0xff); return v }
func (e ConnectionPacketTypeChanged) ConnectionHandle() uint16 {
	v, _ := getUint16LE(e, 1, 0xffff)
	return v
}
func (e ConnectionPacketTypeChanged) PacketType() uint16 { v, _ := getUint16LE(e, 3, 0); return v }

// ReadClockOffsetComplete [Vol 2, Part E, 7.7.30].
type ReadClockOffsetComplete []byte

func (e ReadClockOffsetComplete) Status() uint8 { v, _ := getByte(e, 0, 0xff); return v }
func (e ReadClockOffsetComplete) ConnectionHandle() uint16 {
	v, _ := getUint16LE(e, 1, 0xffff)
	return v
}
func (e ReadClockOffsetComplete) ClockOffset() uint16 { v, _ := getUint16LE(e, 3, 0); return v }

// FlowSpecificationComplete [Vol 2, Part E, 7.7.33].
type FlowSpecificationComplete []byte

func (e FlowSpecificationComplete) Status() uint8 { v, _ := getByte(e, 0, 0xff); return v }
func (e FlowSpecificationComplete) ConnectionHandle() uint16 {
	v, _ := getUint16LE(e, 1, 0xffff)
	return v
}

// ReadRemoteExtendedFeaturesComplete [Vol 2, Part E, 7.7.34].
type ReadRemoteExtendedFeaturesComplete []byte

func (e ReadRemoteExtendedFeaturesComplete) Status() uint8 { v, _ := getByte(e, 0, 0xff); return v }
func (e ReadRemoteExtendedFeaturesComplete) ConnectionHandle() uint16 {
	v, _ := getUint16LE(e, 1, 0xffff)
	return v
}
func (e ReadRemoteExtendedFeaturesComplete) PageNumber() uint8    { v, _ := getByte(e, 3, 0); return v }
func (e ReadRemoteExtendedFeaturesComplete) MaxPageNumber() uint8 { v, _ := getByte(e, 4, 0); return v }
func (e ReadRemoteExtendedFeaturesComplete) Features() [8]byte {
	b, _ := getBytes(e, 5, 8)
	var a [8]byte
	copy(a[:], b)
	return a
}

// leMetaBase reads the fields common to every LE Meta subevent, which all
// carry the 1-byte subevent code at offset 0 (the LE Meta dispatcher hands
// subevent handlers the full event including that byte, matching the
// teacher's handleLEMeta).
type leMetaBase []byte

// LEConnectionComplete [Vol 2, Part E, 7.7.65.1].
type LEConnectionComplete leMetaBase

func (e LEConnectionComplete) Status() uint8            { v, _ := getByte(e, 1, 0xff); return v }
func (e LEConnectionComplete) ConnectionHandle() uint16 { v, _ := getUint16LE(e, 2, 0xffff); return v }
func (e LEConnectionComplete) Role() uint8              { v, _ := getByte(e, 4, 0); return v }
func (e LEConnectionComplete) PeerAddressType() uint8   { v, _ := getByte(e, 5, 0); return v }
func (e LEConnectionComplete) PeerAddress() [6]byte {
	b, _ := getBytes(e, 6, 6)
	var a [6]byte
	copy(a[:], b)
	return a
}
func (e LEConnectionComplete) ConnInterval() uint16 { v, _ := getUint16LE(e, 12, 0); return v }
func (e LEConnectionComplete) ConnLatency() uint16  { v, _ := getUint16LE(e, 14, 0); return v }
func (e LEConnectionComplete) SupervisionTimeout() uint16 {
	v, _ := getUint16LE(e, 16, 0)
	return v
}

// LEEnhancedConnectionComplete [Vol 2, Part E, 7.7.65.10].
type LEEnhancedConnectionComplete leMetaBase

func (e LEEnhancedConnectionComplete) Status() uint8 { v, _ := getByte(e, 1, 0xff); return v }
func (e LEEnhancedConnectionComplete) ConnectionHandle() uint16 {
	v, _ := getUint16LE(e, 2, 0xffff)
	return v
}
func (e LEEnhancedConnectionComplete) Role() uint8            { v, _ := getByte(e, 4, 0); return v }
func (e LEEnhancedConnectionComplete) PeerAddressType() uint8 { v, _ := getByte(e, 5, 0); return v }
func (e LEEnhancedConnectionComplete) PeerAddress() [6]byte {
	b, _ := getBytes(e, 6, 6)
	var a [6]byte
	copy(a[:], b)
	return a
}
func (e LEEnhancedConnectionComplete) LocalResolvablePrivateAddress() [6]byte {
	b, _ := getBytes(e, 12, 6)
	var a [6]byte
	copy(a[:], b)
	return a
}
func (e LEEnhancedConnectionComplete) PeerResolvablePrivateAddress() [6]byte {
	b, _ := getBytes(e, 18, 6)
	var a [6]byte
	copy(a[:], b)
	return a
}
func (e LEEnhancedConnectionComplete) PeerResolvableAddressEmpty() bool {
	a := e.PeerResolvablePrivateAddress()
	return a == [6]byte{}
}
func (e LEEnhancedConnectionComplete) ConnInterval() uint16 { v, _ := getUint16LE(e, 24, 0); return v }
func (e LEEnhancedConnectionComplete) ConnLatency() uint16  { v, _ := getUint16LE(e, 26, 0); return v }
func (e LEEnhancedConnectionComplete) SupervisionTimeout() uint16 {
	v, _ := getUint16LE(e, 28, 0)
	return v
}

// LEConnectionUpdateComplete [Vol 2, Part E, 7.7.65.3].
type LEConnectionUpdateComplete leMetaBase

func (e LEConnectionUpdateComplete) Status() uint8 { v, _ := getByte(e, 1, 0xff); return v }
func (e LEConnectionUpdateComplete) ConnectionHandle() uint16 {
	v, _ := getUint16LE(e, 2, 0xffff)
	return v
}
func (e LEConnectionUpdateComplete) ConnInterval() uint16 { v, _ := getUint16LE(e, 4, 0); return v }
func (e LEConnectionUpdateComplete) ConnLatency() uint16  { v, _ := getUint16LE(e, 6, 0); return v }
func (e LEConnectionUpdateComplete) SupervisionTimeout() uint16 {
	v, _ := getUint16LE(e, 8, 0)
	return v
}

// LEMetaSubeventCode returns the subevent code every LE Meta event starts
// with, used to dispatch to the right typed view above.
func LEMetaSubeventCode(b []byte) uint8 {
	v, _ := getByte(b, 0, 0xff)
	return v
}
