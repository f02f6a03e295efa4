// Package controller implements the HCI handler side of Component A: the
// single-threaded reader of the transport plus the command/event
// machinery every other component rides on top of. Grounded on the
// teacher's HCI struct (sktReadLoop/sktProcessLoop, chCmdBufs/sent map
// command flow control), narrowed to the event set the ACL manager core
// consumes and generalized to hand every parsed event to a Sink posted
// onto the manager's own executor instead of mutating connection state
// directly on this goroutine.
package controller

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/acl/internal/btlog"
	"github.com/go-ble/acl/linux/hci"
	"github.com/go-ble/acl/linux/hci/evt"
	"github.com/pkg/errors"
)

const (
	cmdBufChanSize    = 16
	cmdBufElementSize = 64
	cmdBufTimeout     = 5 * time.Second
	cmdRoundTripTmo   = 10 * time.Second
)

// Sink receives every event the manager core cares about, each call
// already posted onto the manager's own executor by Dispatch — Sink
// methods never run concurrently with each other or with the manager's
// own posted tasks.
type Sink interface {
	OnConnectionComplete(evt.ConnectionComplete)
	OnConnectionRequest(evt.ConnectionRequest)
	OnDisconnectionComplete(evt.DisconnectionComplete)
	OnLEConnectionComplete(evt.LEConnectionComplete)
	OnLEEnhancedConnectionComplete(evt.LEEnhancedConnectionComplete)
	OnLEConnectionUpdateComplete(evt.LEConnectionUpdateComplete)
	OnNumberOfCompletedPackets(handle uint16, completed int)
	OnEncryptionChange(evt.EncryptionChange)
	OnAuthenticationComplete(evt.AuthenticationComplete)
	OnRoleChange(evt.RoleChange)
	OnModeChange(evt.ModeChange)
	OnConnectionPacketTypeChanged(evt.ConnectionPacketTypeChanged)
	OnQosSetupComplete(evt.QosSetupComplete)
	OnFlowSpecificationComplete(evt.FlowSpecificationComplete)
	OnReadClockOffsetComplete(evt.ReadClockOffsetComplete)
	OnReadRemoteSupportedFeaturesComplete(evt.ReadRemoteSupportedFeaturesComplete)
	OnReadRemoteVersionInformationComplete(evt.ReadRemoteVersionInformationComplete)
	OnReadRemoteExtendedFeaturesComplete(evt.ReadRemoteExtendedFeaturesComplete)
	OnACLData(hci.ACLView)
}

type pending struct {
	cmd  hci.Command
	done chan []byte
}

// Handler owns the transport read loop and the command request/response
// machinery; Dispatch is how it hands decoded events to the manager
// handler without ever touching manager-owned state itself.
type Handler struct {
	skt io.ReadWriteCloser
	log btlog.Logger

	dispatch func(func())
	sink     Sink

	chCmdBufs chan []byte
	muSent    sync.Mutex
	sent      map[uint16]*pending

	muClose sync.Mutex
	done    chan struct{}
	err     error

	rxChan chan []byte
}

// New creates a Handler over an already-open transport. Dispatch posts fn
// onto the manager handler's executor (typically Executor.Post); sink is
// the manager core's event surface.
func New(skt io.ReadWriteCloser, dispatch func(func()), sink Sink) *Handler {
	return &Handler{
		skt:       skt,
		log:       btlog.Get().With(map[string]interface{}{"component": "hci"}),
		dispatch:  dispatch,
		sink:      sink,
		chCmdBufs: make(chan []byte, cmdBufChanSize),
		sent:      make(map[uint16]*pending),
		done:      make(chan struct{}),
		rxChan:    make(chan []byte, 16),
	}
}

// Start begins the transport read and dispatch loops. The controller
// allows exactly one outstanding command until the first Command-Complete
// or Command-Status arrives and raises the allowance [Vol 2, Part E, 4.4].
func (h *Handler) Start() {
	h.grantCommandBuffers(1)
	go h.readLoop()
	go h.processLoop()
}

// Close shuts the handler down and closes the underlying transport.
func (h *Handler) Close() error {
	h.muClose.Lock()
	defer h.muClose.Unlock()
	select {
	case <-h.done:
	default:
		close(h.done)
	}
	return h.skt.Close()
}

func (h *Handler) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *Handler) grantCommandBuffers(n int) {
	if n > cmdBufChanSize {
		n = cmdBufChanSize
	}
	for len(h.chCmdBufs) < n {
		select {
		case <-h.done:
			return
		case h.chCmdBufs <- make([]byte, cmdBufElementSize):
		case <-time.After(cmdBufTimeout):
			h.log.Error("timed out granting command buffers")
			return
		}
	}
}

func (h *Handler) readLoop() {
	defer close(h.rxChan)

	b := make([]byte, 4096)
	for {
		n, err := h.skt.Read(b)
		switch {
		case n == 0 && err == nil:
			select {
			case <-h.done:
				return
			default:
				continue
			}
		case err == io.EOF:
			h.err = err
			return
		case err != nil:
			h.err = errors.Wrap(err, "hci: transport read")
			return
		default:
			p := make([]byte, n)
			copy(p, b[:n])
			select {
			case h.rxChan <- p:
			case <-h.done:
				return
			}
		}
	}
}

func (h *Handler) processLoop() {
	for {
		select {
		case <-h.done:
			return
		case p, ok := <-h.rxChan:
			if !ok {
				return
			}
			if err := h.handlePacket(p); err != nil {
				if strings.Contains(err.Error(), "vendor") {
					h.log.Debugf("ignoring vendor packet: %v", err)
					continue
				}
				h.log.Errorf("handling packet: %v", err)
			}
		}
	}
}
