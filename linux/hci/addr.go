package hci

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// AddressType tags the namespace a 48-bit Bluetooth address belongs to.
type AddressType uint8

const (
	AddressTypePublic AddressType = iota
	AddressTypeRandom
	AddressTypeResolvablePublic
	AddressTypeResolvableRandom
)

func (t AddressType) String() string {
	switch t {
	case AddressTypePublic:
		return "public"
	case AddressTypeRandom:
		return "random"
	case AddressTypeResolvablePublic:
		return "resolvable-public"
	case AddressTypeResolvableRandom:
		return "resolvable-random"
	default:
		return "unknown"
	}
}

// Address is a 48-bit Bluetooth device address, kept in the byte order it
// is printed in ("AA:BB:CC:DD:EE:FF"), matching the teacher's Addr.
type Address [6]byte

// ParseAddress parses a colon-separated MAC-style address string.
func ParseAddress(s string) (Address, error) {
	var a Address
	hexStr := strings.ReplaceAll(strings.ToLower(s), ":", "")
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return a, errors.Wrapf(err, "invalid address %q", s)
	}
	if len(b) != 6 {
		return a, errors.Errorf("invalid address %q", s)
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromHCI builds an Address from the little-endian byte order HCI
// uses on the wire (LSB first).
func AddressFromHCI(b [6]byte) Address {
	return Address{b[5], b[4], b[3], b[2], b[1], b[0]}
}

func (a Address) String() string {
	parts := make([]string, 6)
	for i, v := range a {
		parts[i] = strings.ToUpper(hex.EncodeToString([]byte{v}))
	}
	return strings.Join(parts, ":")
}

// AddressWithType pairs a device address with the namespace it was
// reported in, per §3 of the spec.
type AddressWithType struct {
	Address Address
	Type    AddressType
}

func (a AddressWithType) String() string {
	return a.Address.String() + "/" + a.Type.String()
}

// WithResolvedAddress substitutes the resolvable variant of the address
// type when the controller reported a non-empty peer resolvable address
// on an LE-enhanced connection complete event (§3).
func (a AddressWithType) WithResolvedAddress(resolved Address, empty bool) AddressWithType {
	if empty {
		return a
	}
	t := a.Type
	switch t {
	case AddressTypePublic:
		t = AddressTypeResolvablePublic
	case AddressTypeRandom:
		t = AddressTypeResolvableRandom
	}
	return AddressWithType{Address: resolved, Type: t}
}
