// Package h4 implements the H4 UART transport framing for controllers
// reached over a serial link instead of the Linux HCI user-channel socket,
// built on jacobsa/go-serial the way the teacher built its UART transport
// on a go-serial fork [Vol 4, Part A, 2].
package h4

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/go-ble/acl/internal/btlog"
	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
)

const (
	eventPacket = 0x04 // hci.PktTypeEvent
	aclPacket   = 0x02 // hci.PktTypeACLData

	rxQueueSize = 64
)

type h4 struct {
	sp  io.ReadWriteCloser
	rmu sync.Mutex
	wmu sync.Mutex

	frame *frame

	rxQueue chan []byte

	done chan struct{}
	cmu  sync.Mutex

	log btlog.Logger
}

// New opens the serial port described by opts and returns a transport that
// yields one complete HCI packet per Read call.
func New(opts serial.OpenOptions) (io.ReadWriteCloser, error) {
	opts.MinimumReadSize = 0
	opts.InterCharacterTimeout = 100

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "h4: opening serial port")
	}
	return newFramed(sp), nil
}

// NewSocket wraps an already-connected TCP link to an H4-over-socket
// bridge (some controllers expose H4 framing over a network socket
// instead of a physical UART) with read/write deadlines and the same
// framing as the serial transport.
func NewSocket(conn net.Conn, timeout time.Duration) io.ReadWriteCloser {
	return newFramed(&connWithTimeout{c: conn, timeout: timeout})
}

func newFramed(sp io.ReadWriteCloser) io.ReadWriteCloser {
	h := &h4{
		sp:      sp,
		done:    make(chan struct{}),
		rxQueue: make(chan []byte, rxQueueSize),
		log:     btlog.Get().With(map[string]interface{}{"component": "h4"}),
	}
	h.frame = newFrame(h.rxQueue)

	go h.rxLoop()
	return h
}

func (h *h4) Read(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.rmu.Lock()
	defer h.rmu.Unlock()

	select {
	case t := <-h.rxQueue:
		if len(p) < len(t) {
			return 0, errors.New("h4: read buffer too small for framed packet")
		}
		return copy(p, t), nil
	case <-h.done:
		return 0, io.EOF
	case <-time.After(time.Second):
		return 0, nil
	}
}

func (h *h4) Write(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()
	n, err := h.sp.Write(p)
	return n, errors.Wrap(err, "h4: write")
}

func (h *h4) Close() error {
	h.cmu.Lock()
	defer h.cmu.Unlock()

	select {
	case <-h.done:
		return nil
	default:
		close(h.done)
		h.rmu.Lock()
		err := h.sp.Close()
		h.rmu.Unlock()
		return errors.Wrap(err, "h4: close")
	}
}

func (h *h4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *h4) rxLoop() {
	tmp := make([]byte, 512)
	for {
		select {
		case <-h.done:
			return
		default:
		}

		n, err := h.sp.Read(tmp)
		if err != nil {
			if !h.isOpen() {
				return
			}
			h.log.Warnf("h4 serial read: %v", err)
			continue
		}
		if n == 0 {
			continue
		}

		h.frame.Assemble(tmp[:n])
	}
}
