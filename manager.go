// Package acl implements Component F, the ACL manager core: the state
// machine that turns HCI connection-lifecycle events into a table of live
// ACL connections and exposes the fragmentation/reassembly queues and
// per-handle command surface those connections need, without reaching
// into L2CAP channel multiplexing, pairing, or advertising itself.
package acl

import (
	"io"
	"sync"
	"time"

	"github.com/go-ble/acl/internal/btlog"
	"github.com/go-ble/acl/linux/hci"
	"github.com/go-ble/acl/linux/hci/cmd"
	"github.com/go-ble/acl/linux/hci/connection"
	"github.com/go-ble/acl/linux/hci/controller"
	"github.com/go-ble/acl/linux/hci/scheduler"
	"github.com/pkg/errors"
)

// ConnectResult is delivered to a connect callback once the attempt
// resolves, successfully or not.
type ConnectResult struct {
	Conn *Conn
	Err  error
}

// ConnectCallback receives the outcome of a CreateConnection or
// CreateLeConnection call.
type ConnectCallback func(ConnectResult)

// ConnectionRequestDecision is returned by a registered connection-request
// handler to accept or reject an incoming Classic connection.
type ConnectionRequestDecision struct {
	Accept bool
	Role   uint8 // RoleMaster or RoleSlave, meaningful only if Accept.
	Reason uint8 // rejection reason, meaningful only if !Accept.
}

// ConnectionRequestFunc decides whether to accept an incoming Classic
// connection request.
type ConnectionRequestFunc func(addr hci.Address) ConnectionRequestDecision

type pendingConnect struct {
	addr hci.Address
	// peer carries the full AddressWithType for an LE attempt, whose
	// Connecting Set is keyed by type as well as address; zero for a
	// Classic attempt, whose set is keyed by bare Address.
	peer hci.AddressWithType
	cb   ConnectCallback
}

// Manager is the root handle to the ACL manager: one per controller, one
// call to Start per process lifetime.
type Manager struct {
	log btlog.Logger

	maxACLPayload   int
	creditsOverride int
	leCreditsOnly   bool
	requestCB       ConnectionRequestFunc
	acceptCB        ConnectCallback
	leAcceptCB      ConnectCallback

	// extendedAdvertisingSupported and bleSupported cache the controller's
	// advertised LE feature bits read at Start, so CreateLeConnection and
	// the public Supports* queries don't re-issue LE Read Local Supported
	// Features on every call. ownAddressType is the Own_Address_Type
	// argument LE Create Connection is issued with; SetRandomAddressPolicy
	// moves it from public (0x00) to random (0x01) once a random address
	// has been set on the controller.
	extendedAdvertisingSupported bool
	bleSupported                 bool
	ownAddressType               uint8

	mu      sync.Mutex
	started bool
	stopped bool

	exec    *hci.Executor
	handler *controller.Handler
	table   *connection.Table
	sched   *scheduler.Scheduler
	localBD hci.Address

	stopSched chan struct{}

	pendingClassic []*pendingConnect
	pendingLE      *pendingConnect

	// connectingClassic and connectingLE are the spec's two separate
	// Connecting Sets (§3): a Classic attempt and an LE attempt to the
	// same dual-mode address are independent and may run concurrently,
	// since they occupy different transports in the connection table.
	connectingClassic map[hci.Address]struct{}
	connectingLE      map[hci.AddressWithType]struct{}
}

// New creates a Manager. Start must be called before any connection
// operation.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		log:               btlog.Get().With(map[string]interface{}{"component": "acl"}),
		connectingClassic: make(map[hci.Address]struct{}),
		connectingLE:      make(map[hci.AddressWithType]struct{}),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, errors.Wrap(err, "acl: applying option")
		}
	}
	return m, nil
}

// Start brings up the controller over transport: resets it, reads its
// buffer and address information, and begins servicing events and the
// outbound scheduler.
func (m *Manager) Start(transport io.ReadWriteCloser) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("acl: already started")
	}
	m.started = true
	m.mu.Unlock()

	m.exec = hci.NewExecutor(64)
	go m.exec.Run()

	m.table = connection.NewTable()
	m.handler = controller.New(transport, m.exec.Post, m)
	m.handler.Start()

	if err := m.handler.Send(cmd.Reset{}, nil); err != nil {
		return errors.Wrap(err, "acl: resetting controller")
	}

	var bdaddrRP cmd.ReadBDADDRRP
	if err := m.handler.Send(cmd.ReadBDADDR{}, &bdaddrRP); err != nil {
		return errors.Wrap(err, "acl: reading controller address")
	}
	m.localBD = hci.AddressFromHCI(bdaddrRP.BDADDR)

	aclCredits, aclMaxPayload, leCredits, leMaxPayload, err := m.readBufferCapacity()
	if err != nil {
		return err
	}
	if m.creditsOverride > 0 {
		aclCredits = m.creditsOverride
		if !m.leCreditsOnly {
			leCredits = m.creditsOverride
		}
	}
	if m.maxACLPayload != 0 {
		aclMaxPayload = m.maxACLPayload
		if !m.leCreditsOnly {
			leMaxPayload = m.maxACLPayload
		}
	} else {
		m.maxACLPayload = aclMaxPayload
	}

	aclPool := scheduler.NewCreditPool(aclCredits)
	lePool := aclPool
	if m.leCreditsOnly {
		lePool = scheduler.NewCreditPool(leCredits)
	}
	m.sched = scheduler.NewDualPool(aclPool, lePool, aclMaxPayload, leMaxPayload, m.handler.SendACL)

	if err := m.detectLEFeatures(); err != nil {
		m.log.Warnf("reading LE local supported features: %v, defaulting to legacy LE Create Connection", err)
	}

	m.stopSched = make(chan struct{})
	go m.schedulerLoop()

	m.log.Infof("acl manager started, addr %s, acl credits %d, le credits %d, dedicated le buffers %v",
		m.localBD, aclCredits, leCredits, m.leCreditsOnly)
	return nil
}

// readBufferCapacity reads both the ACL-U buffer report (every controller
// has one) and the LE-U buffer report. A controller that reports a
// non-zero LE buffer count keeps LE-U credits in a pool distinct from
// ACL-U, matching the original's acl_connection_handler distinguishing
// classic_acl_packet_credits from le_acl_packet_credits; one that reports
// zero shares the ACL-U pool for LE traffic too.
func (m *Manager) readBufferCapacity() (aclCredits, aclMaxPayload, leCredits, leMaxPayload int, err error) {
	var aclRP cmd.ReadBufferSizeRP
	if err := m.handler.Send(cmd.ReadBufferSize{}, &aclRP); err != nil {
		return 0, 0, 0, 0, errors.Wrap(err, "acl: reading ACL buffer size")
	}
	aclCredits = int(aclRP.HCTotalNumACLDataPackets)
	aclMaxPayload = int(aclRP.HCACLDataPacketLength)
	leCredits, leMaxPayload = aclCredits, aclMaxPayload

	var leRP cmd.LEReadBufferSizeRP
	if err := m.handler.Send(cmd.LEReadBufferSize{}, &leRP); err == nil {
		m.bleSupported = true
		if leRP.HCTotalNumLEDataPackets != 0 {
			leCredits = int(leRP.HCTotalNumLEDataPackets)
			leMaxPayload = int(leRP.HCLEDataPacketLength)
			m.leCreditsOnly = true
		}
	}
	return aclCredits, aclMaxPayload, leCredits, leMaxPayload, nil
}

// detectLEFeatures reads LE Read Local Supported Features and caches
// whether the controller advertises LE Extended Advertising, deciding
// whether CreateLeConnection issues legacy or extended LE Create
// Connection.
func (m *Manager) detectLEFeatures() error {
	if !m.bleSupported {
		return nil
	}
	var rp cmd.LEReadLocalSupportedFeaturesRP
	if err := m.handler.Send(cmd.LEReadLocalSupportedFeatures{}, &rp); err != nil {
		return err
	}
	m.extendedAdvertisingSupported = rp.LESupportedFeatures&cmd.LEFeatureExtendedAdvertising != 0
	return nil
}

// SupportsBLE reports whether the controller answered LE Read Buffer Size,
// i.e. whether it implements the LE Controller role at all.
func (m *Manager) SupportsBLE() bool { return m.bleSupported }

// SupportsDedicatedLEBuffers reports whether the controller keeps LE-U
// credits in a pool separate from ACL-U, per LE Read Buffer Size.
func (m *Manager) SupportsDedicatedLEBuffers() bool { return m.leCreditsOnly }

// SupportsExtendedAdvertising reports whether the controller's LE local
// feature mask advertises LE Extended Advertising, the feature bit that
// gates using LE Extended Create Connection over the legacy command.
func (m *Manager) SupportsExtendedAdvertising() bool { return m.extendedAdvertisingSupported }

// SetRandomAddressPolicy installs addr as the controller's random device
// address and switches subsequent LE Create Connection calls to use it as
// Own_Address_Type, the gating step the spec requires before an extended
// or legacy LE Create Connection may use a random own address
// [Vol 2, Part E, 7.8.4].
func (m *Manager) SetRandomAddressPolicy(addr hci.Address) error {
	return m.call(func() error {
		var bdaddr [6]byte
		for i := 0; i < 6; i++ {
			bdaddr[i] = addr[5-i]
		}
		if err := m.handler.Send(cmd.LESetRandomAddress{RandomAddress: bdaddr}, nil); err != nil {
			return errors.Wrap(err, "acl: setting random address")
		}
		m.ownAddressType = uint8(hci.AddressTypeRandom)
		return nil
	})
}

func (m *Manager) schedulerLoop() {
	for {
		select {
		case <-m.stopSched:
			return
		default:
		}
		if !m.sched.Tick() {
			select {
			case <-m.stopSched:
				return
			case <-tickBackoff():
			}
		}
	}
}

// tickBackoff bounds how often an idle scheduler loop re-checks for work,
// avoiding a busy spin when every connection's outbound queue is empty.
func tickBackoff() <-chan time.Time {
	return time.After(time.Millisecond)
}

// Stop tears the manager down: every live connection's queues are closed
// (already-queued inbound PDUs remain readable) and the transport is
// closed.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if m.stopped || !m.started {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	m.mu.Unlock()

	close(m.stopSched)
	m.table.Each(func(rec *connection.Record) {
		rec.Inbound.Close()
		rec.Outbound.Close()
	})
	m.exec.Stop()
	return m.handler.Close()
}

// call runs fn on the manager executor and blocks for its result,
// guaranteeing every touch of table/scheduler/pending-connect state is
// single-threaded regardless of which goroutine called in.
func (m *Manager) call(fn func() error) error {
	if m.exec == nil {
		return ErrNotStarted
	}
	done := make(chan error, 1)
	m.exec.Post(func() { done <- fn() })
	return <-done
}

// RegisterConnectionRequestHandler installs the callback that decides
// whether to accept an incoming Classic connection request. Routed
// through the executor so it is never read mid-update by an in-flight
// OnConnectionRequest.
func (m *Manager) RegisterConnectionRequestHandler(fn ConnectionRequestFunc) error {
	return m.call(func() error {
		m.requestCB = fn
		return nil
	})
}

// RegisterCallbacks installs the callback notified when an inbound
// Classic connection (one the manager did not itself initiate with
// CreateConnection) completes, after a registered connection-request
// handler accepted it.
func (m *Manager) RegisterCallbacks(cb ConnectCallback) error {
	return m.call(func() error {
		m.acceptCB = cb
		return nil
	})
}

// RegisterLeCallbacks installs the callback notified when an inbound LE
// connection (the manager in the peripheral role) completes.
func (m *Manager) RegisterLeCallbacks(cb ConnectCallback) error {
	return m.call(func() error {
		m.leAcceptCB = cb
		return nil
	})
}
