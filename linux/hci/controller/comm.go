package controller

import (
	"fmt"
	"time"

	"github.com/go-ble/acl/linux/hci"
	"github.com/pkg/errors"
)

// Send issues c and blocks until the matching Command-Complete or
// Command-Status arrives, unmarshalling the return parameters into rp
// (nil if the caller doesn't need them). Send is meant to be called from
// the manager handler's own executor; it blocks that goroutine, not this
// package's read loop, so other manager tasks queue behind it exactly
// like any other manager operation would.
func (h *Handler) Send(c hci.Command, rp hci.CommandRP) error {
	b, err := h.roundTrip(c)
	if err != nil {
		return err
	}
	if len(b) > 0 && b[0] != 0x00 {
		return errors.Errorf("hci: command 0x%04x failed with status 0x%02x", c.OpCode(), b[0])
	}
	if rp != nil {
		return rp.Unmarshal(b)
	}
	return nil
}

// SendACL writes one already-fragmented ACL packet to the transport,
// satisfying scheduler.Sender.
func (h *Handler) SendACL(pkt []byte) error {
	if !h.isOpen() {
		return errors.New("hci: transport closed")
	}
	framed := append([]byte{hci.PktTypeACLData}, pkt...)
	n, err := h.skt.Write(framed)
	if err != nil {
		return errors.Wrap(err, "hci: writing ACL packet")
	}
	if n != len(framed) {
		return errors.New("hci: short write of ACL packet")
	}
	return nil
}

func (h *Handler) roundTrip(c hci.Command) ([]byte, error) {
	if !h.isOpen() {
		return nil, errors.New("hci: closed")
	}

	var buf []byte
	select {
	case <-h.done:
		return nil, errors.New("hci: closed")
	case buf = <-h.chCmdBufs:
	case <-time.After(cmdBufTimeout):
		return nil, errors.New("hci: timed out waiting for a command buffer")
	}

	buf[0] = hci.PktTypeCommand
	buf[1] = byte(c.OpCode())
	buf[2] = byte(c.OpCode() >> 8)
	buf[3] = byte(c.Len())
	if err := c.Marshal(buf[4:]); err != nil {
		return nil, errors.Wrap(err, "hci: marshalling command")
	}

	p := &pending{cmd: c, done: make(chan []byte, 1)}

	h.muSent.Lock()
	if _, dup := h.sent[c.OpCode()]; dup {
		h.muSent.Unlock()
		return nil, errors.Errorf("hci: command 0x%04x already pending", c.OpCode())
	}
	h.sent[c.OpCode()] = p
	h.muSent.Unlock()

	defer func() {
		h.muSent.Lock()
		delete(h.sent, c.OpCode())
		h.muSent.Unlock()
	}()

	n, err := h.skt.Write(buf[:4+c.Len()])
	if err != nil {
		return nil, errors.Wrap(err, "hci: writing command")
	}
	if n != 4+c.Len() {
		return nil, errors.New("hci: short write of command packet")
	}

	select {
	case ret := <-p.done:
		return ret, nil
	case <-h.done:
		return nil, errors.New("hci: closed while awaiting command response")
	case <-time.After(cmdRoundTripTmo):
		return nil, errors.Errorf("hci: no response to command 0x%04x", c.OpCode())
	}
}

func (h *Handler) handlePacket(b []byte) error {
	if len(b) == 0 {
		return errors.New("hci: empty packet")
	}
	t, body := b[0], b[1:]
	switch t {
	case hci.PktTypeACLData:
		return h.handleACL(body)
	case hci.PktTypeEvent:
		return h.handleEvent(body)
	case hci.PktTypeVendor:
		return fmt.Errorf("unsupported vendor packet: % X", body)
	default:
		return fmt.Errorf("hci: unsupported packet type 0x%02x", t)
	}
}

func (h *Handler) handleACL(b []byte) error {
	view := hci.ACLView(b)
	if err := view.Valid(); err != nil {
		return errors.Wrap(err, "hci: invalid ACL packet")
	}
	h.dispatch(func() { h.sink.OnACLData(view) })
	return nil
}
