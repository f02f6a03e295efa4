package controller

import (
	"github.com/go-ble/acl/linux/hci/evt"
	"github.com/pkg/errors"
)

func (h *Handler) handleEvent(b []byte) error {
	if len(b) < 2 {
		return errors.New("hci: short event header")
	}
	code, plen := int(b[0]), int(b[1])
	params := b[2:]
	if plen != len(params) {
		return errors.Errorf("hci: event length mismatch: header says %d, got %d", plen, len(params))
	}

	switch code {
	case evt.CommandCompleteCode:
		return h.handleCommandComplete(params)
	case evt.CommandStatusCode:
		return h.handleCommandStatus(params)
	case evt.ConnectionCompleteCode:
		h.dispatch(func() { h.sink.OnConnectionComplete(evt.ConnectionComplete(params)) })
	case evt.ConnectionRequestCode:
		h.dispatch(func() { h.sink.OnConnectionRequest(evt.ConnectionRequest(params)) })
	case evt.DisconnectionCompleteCode:
		h.dispatch(func() { h.sink.OnDisconnectionComplete(evt.DisconnectionComplete(params)) })
	case evt.NumberOfCompletedPacketsCode:
		h.handleNumberOfCompletedPackets(params)
	case evt.EncryptionChangeCode:
		h.dispatch(func() { h.sink.OnEncryptionChange(evt.EncryptionChange(params)) })
	case evt.AuthenticationCompleteCode:
		h.dispatch(func() { h.sink.OnAuthenticationComplete(evt.AuthenticationComplete(params)) })
	case evt.RoleChangeCode:
		h.dispatch(func() { h.sink.OnRoleChange(evt.RoleChange(params)) })
	case evt.ModeChangeCode:
		h.dispatch(func() { h.sink.OnModeChange(evt.ModeChange(params)) })
	case evt.ConnectionPacketTypeChangedCode:
		h.dispatch(func() { h.sink.OnConnectionPacketTypeChanged(evt.ConnectionPacketTypeChanged(params)) })
	case evt.QosSetupCompleteCode:
		h.dispatch(func() { h.sink.OnQosSetupComplete(evt.QosSetupComplete(params)) })
	case evt.FlowSpecificationCompleteCode:
		h.dispatch(func() { h.sink.OnFlowSpecificationComplete(evt.FlowSpecificationComplete(params)) })
	case evt.ReadClockOffsetCompleteCode:
		h.dispatch(func() { h.sink.OnReadClockOffsetComplete(evt.ReadClockOffsetComplete(params)) })
	case evt.ReadRemoteSupportedFeaturesCompleteCode:
		h.dispatch(func() {
			h.sink.OnReadRemoteSupportedFeaturesComplete(evt.ReadRemoteSupportedFeaturesComplete(params))
		})
	case evt.ReadRemoteVersionInformationCompleteCode:
		h.dispatch(func() {
			h.sink.OnReadRemoteVersionInformationComplete(evt.ReadRemoteVersionInformationComplete(params))
		})
	case evt.ReadRemoteExtendedFeaturesCompleteCode:
		h.dispatch(func() {
			h.sink.OnReadRemoteExtendedFeaturesComplete(evt.ReadRemoteExtendedFeaturesComplete(params))
		})
	case evt.LEMetaEventCode:
		return h.handleLEMeta(params)
	case 0xFF:
		// Vendor event, ignored.
	default:
		h.log.Debugf("unhandled event code 0x%02x", code)
	}
	return nil
}

func (h *Handler) handleCommandComplete(b []byte) error {
	e := evt.CommandComplete(b)
	h.grantCommandBuffers(int(e.NumHCICommandPackets()))

	if e.CommandOpcode() == 0x0000 {
		// NOP, flow control only [Vol 2, Part E, 4.4].
		return nil
	}

	h.muSent.Lock()
	p, found := h.sent[e.CommandOpcode()]
	h.muSent.Unlock()
	if !found {
		return errors.Errorf("hci: no pending command for opcode 0x%04x", e.CommandOpcode())
	}

	select {
	case p.done <- e.ReturnParameters():
	case <-h.done:
	}
	return nil
}

func (h *Handler) handleCommandStatus(b []byte) error {
	e := evt.CommandStatus(b)
	if !e.Valid() {
		return errors.New("hci: malformed command status event")
	}
	h.grantCommandBuffers(int(e.NumHCICommandPackets()))

	h.muSent.Lock()
	p, found := h.sent[e.CommandOpcode()]
	h.muSent.Unlock()
	if !found {
		return errors.Errorf("hci: no pending command for opcode 0x%04x", e.CommandOpcode())
	}

	select {
	case p.done <- []byte{e.Status()}:
	case <-h.done:
	}
	return nil
}

func (h *Handler) handleNumberOfCompletedPackets(b []byte) {
	e := evt.NumberOfCompletedPackets(b)
	n := int(e.NumberOfHandles())
	handles := make([]uint16, n)
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		handles[i] = e.ConnectionHandle(i)
		counts[i] = int(e.HCNumOfCompletedPackets(i))
	}
	h.dispatch(func() {
		for i := range handles {
			h.sink.OnNumberOfCompletedPackets(handles[i], counts[i])
		}
	})
}

func (h *Handler) handleLEMeta(b []byte) error {
	if len(b) == 0 {
		return errors.New("hci: empty LE meta event")
	}
	switch evt.LEMetaSubeventCode(b) {
	case evt.LEConnectionCompleteSubcode:
		h.dispatch(func() { h.sink.OnLEConnectionComplete(evt.LEConnectionComplete(b)) })
	case evt.LEEnhancedConnectionCompleteSubcode:
		h.dispatch(func() { h.sink.OnLEEnhancedConnectionComplete(evt.LEEnhancedConnectionComplete(b)) })
	case evt.LEConnectionUpdateCompleteSubcode:
		h.dispatch(func() { h.sink.OnLEConnectionUpdateComplete(evt.LEConnectionUpdateComplete(b)) })
	default:
		h.log.Debugf("unhandled LE meta subevent 0x%02x", evt.LEMetaSubeventCode(b))
	}
	return nil
}
