package acl

import (
	"github.com/go-ble/acl/linux/hci"
	"github.com/go-ble/acl/linux/hci/connection"
	"github.com/go-ble/acl/linux/hci/cmd"
)

// Conn is the upper layer's handle to one live ACL connection: a thin
// facade over the manager and a connection handle, adapted from the
// teacher's Conn interface down to the ACL-layer surface the manager
// core owns (no L2CAP channel multiplexing, no MTU negotiation).
type Conn struct {
	mgr    *Manager
	handle uint16
}

// Handle returns the 12-bit HCI connection handle this Conn wraps.
func (c *Conn) Handle() uint16 { return c.handle }

func (c *Conn) record() (*connection.Record, error) {
	rec, ok := c.mgr.table.Lookup(c.handle)
	if !ok {
		return nil, ErrUnknownHandle
	}
	return rec, nil
}

// Address returns the remote device's address and address type.
func (c *Conn) Address() (hci.AddressWithType, error) {
	rec, err := c.record()
	if err != nil {
		return hci.AddressWithType{}, err
	}
	return rec.Address, nil
}

// Role returns RoleMaster or RoleSlave for this connection.
func (c *Conn) Role() (uint8, error) {
	rec, err := c.record()
	if err != nil {
		return 0, err
	}
	return rec.Role, nil
}

// Transport reports whether this is a Classic or LE connection.
func (c *Conn) Transport() (hci.Transport, error) {
	rec, err := c.record()
	if err != nil {
		return 0, err
	}
	return rec.Transport, nil
}

// Disconnected reports whether this connection has already torn down.
func (c *Conn) Disconnected() bool {
	rec, err := c.record()
	if err != nil {
		return true
	}
	return rec.Disconnected()
}

// Inbound returns the queue of reassembled inbound PDUs.
func (c *Conn) Inbound() (*connection.Queue, error) {
	rec, err := c.record()
	if err != nil {
		return nil, err
	}
	return rec.Inbound, nil
}

// Outbound returns the queue the scheduler drains outbound PDUs from.
func (c *Conn) Outbound() (*connection.Queue, error) {
	rec, err := c.record()
	if err != nil {
		return nil, err
	}
	return rec.Outbound, nil
}

// RegisterDisconnectCallback installs the one-shot callback fired when
// this connection disconnects, firing immediately if it already has.
func (c *Conn) RegisterDisconnectCallback(cb connection.DisconnectFunc) error {
	rec, err := c.record()
	if err != nil {
		return err
	}
	rec.RegisterDisconnectCallback(cb, c.mgr.exec)
	return nil
}

// RegisterCommandSink installs the sink that receives this connection's
// per-handle controller events (Encryption Change and the like).
func (c *Conn) RegisterCommandSink(sink connection.CommandSink) error {
	rec, err := c.record()
	if err != nil {
		return err
	}
	rec.RegisterCommandSink(sink, c.mgr.exec)
	return nil
}

// Disconnect requests the controller tear this connection down.
func (c *Conn) Disconnect(reason uint8) error {
	return c.mgr.call(func() error {
		rec, err := c.record()
		if err != nil {
			return err
		}
		if rec.Disconnected() {
			return ErrAlreadyDisconnected
		}
		return c.mgr.handler.Send(cmd.Disconnect{ConnectionHandle: c.handle, Reason: reason}, nil)
	})
}

// LEConnectionUpdate requests new LE connection parameters, delivering the
// controller's verdict to cb once the LE-Connection-Update-Complete event
// arrives for this handle.
func (c *Conn) LEConnectionUpdate(p LEConnectionUpdateParams, cb func(status uint8)) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return c.mgr.call(func() error {
		rec, err := c.record()
		if err != nil {
			return err
		}
		if rec.Transport != hci.TransportLE {
			return ErrUnknownHandle
		}
		if rec.Disconnected() {
			return ErrAlreadyDisconnected
		}
		if !rec.TryArmLEUpdate(cb, c.mgr.exec) {
			return ErrLEUpdateAlreadyPending
		}
		err = c.mgr.handler.Send(cmd.LEConnectionUpdate{
			ConnectionHandle:   c.handle,
			ConnIntervalMin:    p.IntervalMin,
			ConnIntervalMax:    p.IntervalMax,
			ConnLatency:        p.Latency,
			SupervisionTimeout: p.SupervisionTimeout,
			MinCELen:           p.MinCELen,
			MaxCELen:           p.MaxCELen,
		}, nil)
		if err != nil {
			rec.SetPendingLEUpdate(nil, nil)
		}
		return err
	})
}

// sendHandleCommand is the common path every per-handle command below
// takes: verify the handle is still live, then issue the already-built
// command on the manager's executor.
func (c *Conn) sendHandleCommand(command hci.Command, rp hci.CommandRP) error {
	return c.mgr.call(func() error {
		rec, err := c.record()
		if err != nil {
			return err
		}
		if rec.Disconnected() {
			return ErrAlreadyDisconnected
		}
		return c.mgr.handler.Send(command, rp)
	})
}

// SendRawCommand issues a per-handle command against this connection's
// handle, a fallback for any opcode the named methods below don't cover.
func (c *Conn) SendRawCommand(opcode uint16, params []byte, rp hci.CommandRP) error {
	return c.sendHandleCommand(cmd.RawHandleCommand{
		Opcode:           opcode,
		ConnectionHandle: c.handle,
		Params:           params,
	}, rp)
}

// ChangeConnectionPacketType requests a new packet type for this
// connection; the outcome is delivered to the registered CommandSink via
// Connection Packet Type Changed.
func (c *Conn) ChangeConnectionPacketType(packetType uint16) error {
	return c.sendHandleCommand(cmd.ChangeConnectionPacketType{ConnectionHandle: c.handle, PacketType: packetType}, nil)
}

// AuthenticationRequested starts Classic authentication on this
// connection; the outcome is delivered to the registered CommandSink via
// Authentication Complete.
func (c *Conn) AuthenticationRequested() error {
	return c.sendHandleCommand(cmd.AuthenticationRequested{ConnectionHandle: c.handle}, nil)
}

// SetConnectionEncryption enables or disables link encryption; the outcome
// is delivered to the registered CommandSink via Encryption Change.
func (c *Conn) SetConnectionEncryption(enable bool) error {
	var flag uint8
	if enable {
		flag = 1
	}
	return c.sendHandleCommand(cmd.SetConnectionEncryption{ConnectionHandle: c.handle, EncryptionEnable: flag}, nil)
}

// HoldMode requests Hold mode; the outcome is delivered to the registered
// CommandSink via Mode Change.
func (c *Conn) HoldMode(maxInterval, minInterval uint16) error {
	return c.sendHandleCommand(cmd.HoldMode{
		ConnectionHandle:    c.handle,
		HoldModeMaxInterval: maxInterval,
		HoldModeMinInterval: minInterval,
	}, nil)
}

// SniffMode requests Sniff mode; the outcome is delivered to the
// registered CommandSink via Mode Change.
func (c *Conn) SniffMode(maxInterval, minInterval, attempt, timeout uint16) error {
	return c.sendHandleCommand(cmd.SniffMode{
		ConnectionHandle: c.handle,
		SniffMaxInterval: maxInterval,
		SniffMinInterval: minInterval,
		SniffAttempt:     attempt,
		SniffTimeout:     timeout,
	}, nil)
}

// ExitSniffMode requests leaving Sniff mode; the outcome is delivered to
// the registered CommandSink via Mode Change.
func (c *Conn) ExitSniffMode() error {
	return c.sendHandleCommand(cmd.ExitSniffMode{ConnectionHandle: c.handle}, nil)
}

// QosSetup requests a quality-of-service contract for this connection;
// the outcome is delivered to the registered CommandSink via QoS Setup
// Complete.
func (c *Conn) QosSetup(flags, serviceType uint8, tokenRate, peakBandwidth, latency, delayVariation uint32) error {
	return c.sendHandleCommand(cmd.QosSetup{
		ConnectionHandle: c.handle,
		Flags:            flags,
		ServiceType:      serviceType,
		TokenRate:        tokenRate,
		PeakBandwidth:    peakBandwidth,
		Latency:          latency,
		DelayVariation:   delayVariation,
	}, nil)
}

// RoleDiscovery reports this connection's current Classic role.
func (c *Conn) RoleDiscovery() (cmd.RoleDiscoveryRP, error) {
	var rp cmd.RoleDiscoveryRP
	err := c.sendHandleCommand(cmd.RoleDiscovery{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// ReadLinkPolicySettings reports this connection's current link policy
// settings bitmask.
func (c *Conn) ReadLinkPolicySettings() (cmd.ReadLinkPolicySettingsRP, error) {
	var rp cmd.ReadLinkPolicySettingsRP
	err := c.sendHandleCommand(cmd.ReadLinkPolicySettings{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// WriteLinkPolicySettings sets this connection's link policy settings
// bitmask.
func (c *Conn) WriteLinkPolicySettings(settings uint16) (cmd.WriteLinkPolicySettingsRP, error) {
	var rp cmd.WriteLinkPolicySettingsRP
	err := c.sendHandleCommand(cmd.WriteLinkPolicySettings{ConnectionHandle: c.handle, LinkPolicySettings: settings}, &rp)
	return rp, err
}

// FlowSpecification requests a flow specification for this connection;
// the outcome is delivered to the registered CommandSink via Flow
// Specification Complete.
func (c *Conn) FlowSpecification(flags, direction, serviceType uint8, tokenRate, tokenBucketSize, peakBandwidth, accessLatency uint32) error {
	return c.sendHandleCommand(cmd.FlowSpecification{
		ConnectionHandle: c.handle,
		Flags:            flags,
		FlowDirection:    direction,
		ServiceType:      serviceType,
		TokenRate:        tokenRate,
		TokenBucketSize:  tokenBucketSize,
		PeakBandwidth:    peakBandwidth,
		AccessLatency:    accessLatency,
	}, nil)
}

// SniffSubrating configures sniff subrating for this connection.
func (c *Conn) SniffSubrating(maxLatency, minRemoteTimeout, minLocalTimeout uint16) (cmd.SniffSubratingRP, error) {
	var rp cmd.SniffSubratingRP
	err := c.sendHandleCommand(cmd.SniffSubrating{
		ConnectionHandle: c.handle,
		MaxLatency:       maxLatency,
		MinRemoteTimeout: minRemoteTimeout,
		MinLocalTimeout:  minLocalTimeout,
	}, &rp)
	return rp, err
}

// Flush discards this connection's queued automatically-flushable data.
func (c *Conn) Flush() (cmd.FlushRP, error) {
	var rp cmd.FlushRP
	err := c.sendHandleCommand(cmd.Flush{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// ReadAutomaticFlushTimeout reports this connection's flush timeout.
func (c *Conn) ReadAutomaticFlushTimeout() (cmd.ReadAutomaticFlushTimeoutRP, error) {
	var rp cmd.ReadAutomaticFlushTimeoutRP
	err := c.sendHandleCommand(cmd.ReadAutomaticFlushTimeout{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// WriteAutomaticFlushTimeout sets this connection's flush timeout.
func (c *Conn) WriteAutomaticFlushTimeout(timeout uint16) (cmd.WriteAutomaticFlushTimeoutRP, error) {
	var rp cmd.WriteAutomaticFlushTimeoutRP
	err := c.sendHandleCommand(cmd.WriteAutomaticFlushTimeout{ConnectionHandle: c.handle, FlushTimeout: timeout}, &rp)
	return rp, err
}

// ReadTransmitPowerLevel reports this connection's current or maximum
// transmit power level, in dBm.
func (c *Conn) ReadTransmitPowerLevel(kind uint8) (cmd.ReadTransmitPowerLevelRP, error) {
	var rp cmd.ReadTransmitPowerLevelRP
	err := c.sendHandleCommand(cmd.ReadTransmitPowerLevel{ConnectionHandle: c.handle, Type: kind}, &rp)
	return rp, err
}

// ReadLinkSupervisionTimeout reports this connection's link supervision
// timeout.
func (c *Conn) ReadLinkSupervisionTimeout() (cmd.ReadLinkSupervisionTimeoutRP, error) {
	var rp cmd.ReadLinkSupervisionTimeoutRP
	err := c.sendHandleCommand(cmd.ReadLinkSupervisionTimeout{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// WriteLinkSupervisionTimeout sets this connection's link supervision
// timeout.
func (c *Conn) WriteLinkSupervisionTimeout(timeout uint16) (cmd.WriteLinkSupervisionTimeoutRP, error) {
	var rp cmd.WriteLinkSupervisionTimeoutRP
	err := c.sendHandleCommand(cmd.WriteLinkSupervisionTimeout{ConnectionHandle: c.handle, LinkSupervisionTimeout: timeout}, &rp)
	return rp, err
}

// ReadFailedContactCounter reports this connection's failed-contact
// counter.
func (c *Conn) ReadFailedContactCounter() (cmd.ReadFailedContactCounterRP, error) {
	var rp cmd.ReadFailedContactCounterRP
	err := c.sendHandleCommand(cmd.ReadFailedContactCounter{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// ResetFailedContactCounter resets this connection's failed-contact
// counter.
func (c *Conn) ResetFailedContactCounter() (cmd.ResetFailedContactCounterRP, error) {
	var rp cmd.ResetFailedContactCounterRP
	err := c.sendHandleCommand(cmd.ResetFailedContactCounter{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// ReadLinkQuality reports this connection's current link quality.
func (c *Conn) ReadLinkQuality() (cmd.ReadLinkQualityRP, error) {
	var rp cmd.ReadLinkQualityRP
	err := c.sendHandleCommand(cmd.ReadLinkQuality{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// ReadAfhChannelMap reports this connection's current AFH channel map.
func (c *Conn) ReadAfhChannelMap() (cmd.ReadAFHChannelMapRP, error) {
	var rp cmd.ReadAFHChannelMapRP
	err := c.sendHandleCommand(cmd.ReadAFHChannelMap{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// ReadRssi reports this connection's current RSSI, in dBm.
func (c *Conn) ReadRssi() (cmd.ReadRSSIRP, error) {
	var rp cmd.ReadRSSIRP
	err := c.sendHandleCommand(cmd.ReadRSSI{ConnectionHandle: c.handle}, &rp)
	return rp, err
}

// ReadClock reports the controller's Bluetooth clock and accuracy,
// optionally the piconet clock of this connection (whichClock 0x01)
// instead of the local clock (0x00).
func (c *Conn) ReadClock(whichClock uint8) (cmd.ReadClockRP, error) {
	var rp cmd.ReadClockRP
	err := c.sendHandleCommand(cmd.ReadClock{ConnectionHandle: c.handle, WhichClock: whichClock}, &rp)
	return rp, err
}

// ReadRemoteSupportedFeatures requests the remote device's supported
// features; the result is delivered to the registered CommandSink via
// Read Remote Supported Features Complete.
func (c *Conn) ReadRemoteSupportedFeatures() error {
	return c.sendHandleCommand(cmd.ReadRemoteSupportedFeatures{ConnectionHandle: c.handle}, nil)
}

// ReadRemoteExtendedFeatures requests one page of the remote device's
// extended features; the result is delivered to the registered
// CommandSink via Read Remote Extended Features Complete.
func (c *Conn) ReadRemoteExtendedFeatures(page uint8) error {
	return c.sendHandleCommand(cmd.ReadRemoteExtendedFeatures{ConnectionHandle: c.handle, PageNumber: page}, nil)
}

// ReadRemoteVersionInformation requests the remote device's LMP version
// information; the result is delivered to the registered CommandSink via
// Read Remote Version Information Complete.
func (c *Conn) ReadRemoteVersionInformation() error {
	return c.sendHandleCommand(cmd.ReadRemoteVersionInformation{ConnectionHandle: c.handle}, nil)
}

// ReadClockOffsetRemote requests the remote device's clock offset; the
// result is delivered to the registered CommandSink via Read Clock Offset
// Complete.
func (c *Conn) ReadClockOffsetRemote() error {
	return c.sendHandleCommand(cmd.ReadClockOffset{ConnectionHandle: c.handle}, nil)
}
