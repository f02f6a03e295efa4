package acl

import (
	"github.com/go-ble/acl/linux/hci"
	"github.com/go-ble/acl/linux/hci/cmd"
)

// LEConnectionUpdateParams carries the connection-interval/latency/timeout
// bounds of an LE Connection Update request [Vol 2, Part E, 7.8.18].
type LEConnectionUpdateParams struct {
	IntervalMin        uint16
	IntervalMax        uint16
	Latency            uint16
	SupervisionTimeout uint16
	MinCELen           uint16
	MaxCELen           uint16
}

// Connection interval/latency/supervision-timeout bounds
// [Vol 2, Part E, 7.8.18].
const (
	minConnInterval    = 0x0006
	maxConnInterval    = 0x0C80
	maxConnLatency     = 0x01F3
	minSupervisionTimeout = 0x000A
	maxSupervisionTimeout = 0x0C80
)

// Validate rejects LE connection parameters the controller would
// otherwise reject, before ever issuing an HCI command for them.
func (p LEConnectionUpdateParams) Validate() error {
	if p.IntervalMin < minConnInterval || p.IntervalMin > maxConnInterval ||
		p.IntervalMax < minConnInterval || p.IntervalMax > maxConnInterval ||
		p.IntervalMin > p.IntervalMax {
		return ErrInvalidConnectionParams
	}
	if p.Latency > maxConnLatency {
		return ErrInvalidConnectionParams
	}
	if p.SupervisionTimeout < minSupervisionTimeout || p.SupervisionTimeout > maxSupervisionTimeout {
		return ErrInvalidConnectionParams
	}
	return nil
}

// CreateConnection starts a Classic (BR/EDR) outbound connection attempt.
// Only one Create Connection command is ever outstanding at a time; a
// second request for a different address while one is already pending
// queues behind it (§4.F's Pending-Outgoing-Classic-Queue), while a
// second request for the same address fails immediately.
func (m *Manager) CreateConnection(addr hci.Address, cb ConnectCallback) error {
	return m.call(func() error {
		if _, ok := m.connectingClassic[addr]; ok {
			return ErrAlreadyConnecting
		}
		m.connectingClassic[addr] = struct{}{}
		pc := &pendingConnect{addr: addr, cb: cb}

		if len(m.pendingClassic) == 0 {
			if err := m.sendCreateConnection(addr); err != nil {
				delete(m.connectingClassic, addr)
				return err
			}
		}
		m.pendingClassic = append(m.pendingClassic, pc)
		return nil
	})
}

func (m *Manager) sendCreateConnection(addr hci.Address) error {
	var bdaddr [6]byte
	for i := 0; i < 6; i++ {
		bdaddr[i] = addr[5-i]
	}
	return m.handler.Send(cmd.CreateConnection{
		BDADDR:                 bdaddr,
		PacketType:             0xCC18, // DM1/DH1/DM3/DH3/DM5/DH5, no voice.
		PageScanRepetitionMode: 0x02,
		AllowRoleSwitch:        0x01,
	}, nil)
}

// CreateLeConnection starts an LE outbound connection attempt. At most one
// LE connection attempt may be outstanding at a time; there is no queueing
// equivalent to Classic's pending list because the controller itself only
// supports one outstanding LE Create Connection. On a controller whose LE
// local feature mask advertises LE Extended Advertising, the extended form
// of the command is issued instead of the legacy one, over the 1M PHY
// only; earlier controllers always get the legacy command.
func (m *Manager) CreateLeConnection(peer hci.AddressWithType, p LEConnectionUpdateParams, cb ConnectCallback) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return m.call(func() error {
		if _, ok := m.connectingLE[peer]; ok {
			return ErrAlreadyConnecting
		}
		if m.pendingLE != nil {
			return ErrAlreadyConnecting
		}

		var bdaddr [6]byte
		for i := 0; i < 6; i++ {
			bdaddr[i] = peer.Address[5-i]
		}

		var err error
		if m.extendedAdvertisingSupported {
			err = m.handler.Send(cmd.LEExtCreateConnection{
				InitiatorFilterPolicy: 0x00,
				OwnAddressType:        m.ownAddressType,
				PeerAddressType:       uint8(peer.Type),
				PeerAddress:           bdaddr,
				InitiatingPHYs:        cmd.LEPhy1M,
				ScanInterval:          0x0060,
				ScanWindow:            0x0030,
				ConnIntervalMin:       p.IntervalMin,
				ConnIntervalMax:       p.IntervalMax,
				ConnLatency:           p.Latency,
				SupervisionTimeout:    p.SupervisionTimeout,
				MinCELen:              p.MinCELen,
				MaxCELen:              p.MaxCELen,
			}, nil)
		} else {
			err = m.handler.Send(cmd.LECreateConnection{
				ScanInterval:          0x0060,
				ScanWindow:            0x0030,
				InitiatorFilterPolicy: 0x00,
				PeerAddressType:       uint8(peer.Type),
				PeerAddress:           bdaddr,
				OwnAddressType:        m.ownAddressType,
				ConnIntervalMin:       p.IntervalMin,
				ConnIntervalMax:       p.IntervalMax,
				ConnLatency:           p.Latency,
				SupervisionTimeout:    p.SupervisionTimeout,
				MinCELen:              p.MinCELen,
				MaxCELen:              p.MaxCELen,
			}, nil)
		}
		if err != nil {
			return err
		}

		m.connectingLE[peer] = struct{}{}
		m.pendingLE = &pendingConnect{addr: peer.Address, peer: peer, cb: cb}
		return nil
	})
}

// CancelConnect cancels an in-flight connection attempt for addr, whether
// Classic or LE. Returns ErrNoPendingConnect if no such attempt exists.
func (m *Manager) CancelConnect(addr hci.Address) error {
	return m.call(func() error {
		if m.pendingLE != nil && m.pendingLE.addr == addr {
			if err := m.handler.Send(cmd.LECreateConnectionCancel{}, nil); err != nil {
				return err
			}
			delete(m.connectingLE, m.pendingLE.peer)
			m.pendingLE = nil
			return nil
		}

		for i, pc := range m.pendingClassic {
			if pc.addr != addr {
				continue
			}
			delete(m.connectingClassic, addr)
			if i == 0 {
				var bdaddr [6]byte
				for j := 0; j < 6; j++ {
					bdaddr[j] = addr[5-j]
				}
				if err := m.handler.Send(cmd.CreateConnectionCancel{BDADDR: bdaddr}, nil); err != nil {
					return err
				}
			}
			m.pendingClassic = append(m.pendingClassic[:i], m.pendingClassic[i+1:]...)
			return nil
		}
		return ErrNoPendingConnect
	})
}
