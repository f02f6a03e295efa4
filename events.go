package acl

import (
	"github.com/go-ble/acl/linux/hci"
	"github.com/go-ble/acl/linux/hci/cmd"
	"github.com/go-ble/acl/linux/hci/connection"
	"github.com/go-ble/acl/linux/hci/evt"
	"github.com/pkg/errors"
)

// Manager implements controller.Sink. Every method here is only ever
// invoked already posted onto the manager's own executor (controller.New
// was given m.exec.Post as its dispatch function), so these run
// single-threaded with respect to each other and with every call() task.

func (m *Manager) OnConnectionComplete(e evt.ConnectionComplete) {
	addr := hci.AddressFromHCI(e.BDADDR())

	if e.Status() != 0x00 {
		if pc := m.popPendingClassic(addr); pc != nil {
			delete(m.connectingClassic, addr)
			pc.cb(ConnectResult{Err: errStatus(e.Status())})
			m.issueNextPendingClassic()
		} else {
			m.log.Warnf("connection complete failure for unrequested address %s, status 0x%02x", addr, e.Status())
		}
		return
	}

	handle := e.ConnectionHandle()
	role := uint8(hci.RoleSlave)
	var cb ConnectCallback
	outbound := false
	if pc := m.popPendingClassic(addr); pc != nil {
		role = hci.RoleMaster
		cb = pc.cb
		outbound = true
		delete(m.connectingClassic, addr)
	}

	withType := hci.AddressWithType{Address: addr, Type: hci.AddressTypePublic}
	rec := connection.NewRecord(handle, withType, role, hci.TransportClassic)
	if !m.table.Insert(rec) {
		m.log.Errorf("connection complete for already-live handle %d, dropping duplicate", handle)
		return
	}
	m.sched.Register(rec)

	conn := &Conn{mgr: m, handle: handle}
	switch {
	case cb != nil:
		cb(ConnectResult{Conn: conn})
	case m.acceptCB != nil:
		m.acceptCB(ConnectResult{Conn: conn})
	}
	if outbound {
		m.issueNextPendingClassic()
	}
}

func (m *Manager) OnConnectionRequest(e evt.ConnectionRequest) {
	addr := hci.AddressFromHCI(e.BDADDR())

	decision := ConnectionRequestDecision{Accept: false, Reason: 0x0D} // default: reject, limited resources.
	if m.requestCB != nil {
		decision = m.requestCB(addr)
	}

	var err error
	if decision.Accept {
		err = m.handler.Send(cmd.AcceptConnectionRequest{BDADDR: e.BDADDR(), Role: decision.Role}, nil)
	} else {
		err = m.handler.Send(cmd.RejectConnectionRequest{BDADDR: e.BDADDR(), Reason: decision.Reason}, nil)
	}
	if err != nil {
		m.log.Errorf("responding to connection request from %s: %v", addr, err)
	}
}

func (m *Manager) OnDisconnectionComplete(e evt.DisconnectionComplete) {
	handle := e.ConnectionHandle()
	rec, ok := m.table.Lookup(handle)
	if !ok {
		m.log.Warnf("disconnection complete for unknown handle %d", handle)
		return
	}
	rec.MarkDisconnected(e.Reason())
	m.table.Remove(handle)
	m.sched.Unregister(handle)
}

func (m *Manager) OnLEConnectionComplete(e evt.LEConnectionComplete) {
	if e.Status() != 0x00 {
		m.failPendingLE(errStatus(e.Status()))
		return
	}

	withType := hci.AddressWithType{
		Address: hci.AddressFromHCI(e.PeerAddress()),
		Type:    hci.AddressType(e.PeerAddressType()),
	}
	m.completeLEConnection(e.ConnectionHandle(), e.Role(), withType)
}

func (m *Manager) OnLEEnhancedConnectionComplete(e evt.LEEnhancedConnectionComplete) {
	if e.Status() != 0x00 {
		m.failPendingLE(errStatus(e.Status()))
		return
	}

	base := hci.AddressWithType{
		Address: hci.AddressFromHCI(e.PeerAddress()),
		Type:    hci.AddressType(e.PeerAddressType()),
	}
	withType := base.WithResolvedAddress(hci.AddressFromHCI(e.PeerResolvablePrivateAddress()), e.PeerResolvableAddressEmpty())
	m.completeLEConnection(e.ConnectionHandle(), e.Role(), withType)
}

func (m *Manager) completeLEConnection(handle uint16, role uint8, addr hci.AddressWithType) {
	var cb ConnectCallback
	if role == hci.RoleMaster && m.pendingLE != nil {
		cb = m.pendingLE.cb
		delete(m.connectingLE, m.pendingLE.peer)
		m.pendingLE = nil
	}

	rec := connection.NewRecord(handle, addr, role, hci.TransportLE)
	if !m.table.Insert(rec) {
		m.log.Errorf("LE connection complete for already-live handle %d, dropping duplicate", handle)
		return
	}
	m.sched.Register(rec)

	conn := &Conn{mgr: m, handle: handle}
	switch {
	case cb != nil:
		cb(ConnectResult{Conn: conn})
	case m.leAcceptCB != nil:
		m.leAcceptCB(ConnectResult{Conn: conn})
	}
}

func (m *Manager) OnLEConnectionUpdateComplete(e evt.LEConnectionUpdateComplete) {
	rec, ok := m.table.Lookup(e.ConnectionHandle())
	if !ok {
		m.log.Warnf("LE connection update complete for unknown handle %d", e.ConnectionHandle())
		return
	}
	rec.FireLEUpdate(e.Status())
}

func (m *Manager) OnNumberOfCompletedPackets(handle uint16, completed int) {
	m.sched.HandleNumberOfCompletedPackets(handle, completed)
}

func (m *Manager) OnEncryptionChange(e evt.EncryptionChange) {
	m.deliverByHandle(e.ConnectionHandle(), evt.EncryptionChangeCode, []byte(e))
}

// OnAuthenticationComplete forwards the asynchronous completion of a
// per-handle AuthenticationRequested command to its registered
// CommandSink.
func (m *Manager) OnAuthenticationComplete(e evt.AuthenticationComplete) {
	m.deliverByHandle(e.ConnectionHandle(), evt.AuthenticationCompleteCode, []byte(e))
}

// OnRoleChange forwards a Classic role change to its CommandSink. Unlike
// every other per-handle event, this one is keyed by BDADDR rather than
// connection handle, so the record is found with Table.LookupByAddress
// instead of a handle lookup.
func (m *Manager) OnRoleChange(e evt.RoleChange) {
	addr := hci.AddressFromHCI(e.BDADDR())
	rec, ok := m.table.LookupByAddress(addr)
	if !ok {
		m.log.Warnf("role change for unknown address %s", addr)
		return
	}
	rec.DeliverCommandEvent(evt.RoleChangeCode, []byte(e))
}

// OnModeChange forwards the asynchronous completion of HoldMode,
// SniffMode, or ExitSniffMode to its registered CommandSink.
func (m *Manager) OnModeChange(e evt.ModeChange) {
	m.deliverByHandle(e.ConnectionHandle(), evt.ModeChangeCode, []byte(e))
}

// OnConnectionPacketTypeChanged forwards the asynchronous completion of
// ChangeConnectionPacketType to its registered CommandSink.
func (m *Manager) OnConnectionPacketTypeChanged(e evt.ConnectionPacketTypeChanged) {
	m.deliverByHandle(e.ConnectionHandle(), evt.ConnectionPacketTypeChangedCode, []byte(e))
}

// OnQosSetupComplete forwards the asynchronous completion of QosSetup to
// its registered CommandSink.
func (m *Manager) OnQosSetupComplete(e evt.QosSetupComplete) {
	m.deliverByHandle(e.ConnectionHandle(), evt.QosSetupCompleteCode, []byte(e))
}

// OnFlowSpecificationComplete forwards the asynchronous completion of
// FlowSpecification to its registered CommandSink.
func (m *Manager) OnFlowSpecificationComplete(e evt.FlowSpecificationComplete) {
	m.deliverByHandle(e.ConnectionHandle(), evt.FlowSpecificationCompleteCode, []byte(e))
}

// OnReadClockOffsetComplete forwards the asynchronous completion of
// ReadClockOffset to its registered CommandSink.
func (m *Manager) OnReadClockOffsetComplete(e evt.ReadClockOffsetComplete) {
	m.deliverByHandle(e.ConnectionHandle(), evt.ReadClockOffsetCompleteCode, []byte(e))
}

// OnReadRemoteSupportedFeaturesComplete forwards the asynchronous
// completion of ReadRemoteSupportedFeatures to its registered CommandSink.
func (m *Manager) OnReadRemoteSupportedFeaturesComplete(e evt.ReadRemoteSupportedFeaturesComplete) {
	m.deliverByHandle(e.ConnectionHandle(), evt.ReadRemoteSupportedFeaturesCompleteCode, []byte(e))
}

// OnReadRemoteVersionInformationComplete forwards the asynchronous
// completion of ReadRemoteVersionInformation to its registered
// CommandSink.
func (m *Manager) OnReadRemoteVersionInformationComplete(e evt.ReadRemoteVersionInformationComplete) {
	m.deliverByHandle(e.ConnectionHandle(), evt.ReadRemoteVersionInformationCompleteCode, []byte(e))
}

// OnReadRemoteExtendedFeaturesComplete forwards the asynchronous
// completion of ReadRemoteExtendedFeatures to its registered CommandSink.
func (m *Manager) OnReadRemoteExtendedFeaturesComplete(e evt.ReadRemoteExtendedFeaturesComplete) {
	m.deliverByHandle(e.ConnectionHandle(), evt.ReadRemoteExtendedFeaturesCompleteCode, []byte(e))
}

// deliverByHandle is the common path every handle-keyed per-handle
// command-completion event takes to reach its connection's registered
// CommandSink.
func (m *Manager) deliverByHandle(handle uint16, code int, payload []byte) {
	rec, ok := m.table.Lookup(handle)
	if !ok {
		m.log.Warnf("per-handle event 0x%02x for unknown handle %d", code, handle)
		return
	}
	rec.DeliverCommandEvent(code, payload)
}

func (m *Manager) OnACLData(view hci.ACLView) {
	handle := view.Handle()
	if handle == hci.ReservedHandle {
		return
	}
	rec, ok := m.table.Lookup(handle)
	if !ok {
		m.log.Warnf("ACL data for unknown handle %d, dropping", handle)
		return
	}
	rec.HandleIncoming(view)
}

func (m *Manager) popPendingClassic(addr hci.Address) *pendingConnect {
	for i, pc := range m.pendingClassic {
		if pc.addr == addr {
			m.pendingClassic = append(m.pendingClassic[:i], m.pendingClassic[i+1:]...)
			return pc
		}
	}
	return nil
}

// issueNextPendingClassic sends the next queued Create Connection command,
// if any, now that the controller has room for another outstanding one.
func (m *Manager) issueNextPendingClassic() {
	if len(m.pendingClassic) == 0 {
		return
	}
	next := m.pendingClassic[0]
	if err := m.sendCreateConnection(next.addr); err != nil {
		m.pendingClassic = m.pendingClassic[1:]
		delete(m.connectingClassic, next.addr)
		next.cb(ConnectResult{Err: err})
		m.issueNextPendingClassic()
	}
}

func (m *Manager) failPendingLE(err error) {
	if m.pendingLE == nil {
		m.log.Warnf("LE connection failure with no pending attempt: %v", err)
		return
	}
	pc := m.pendingLE
	m.pendingLE = nil
	delete(m.connectingLE, pc.peer)
	pc.cb(ConnectResult{Err: err})
}

func errStatus(status uint8) error {
	return errors.Errorf("acl: controller returned status 0x%02x", status)
}
