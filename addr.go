package acl

import "github.com/go-ble/acl/linux/hci"

// Address, AddressType, and AddressWithType are defined in the low-level
// hci package (shared with the connection table and scheduler) and
// re-exported here for callers of the public API.
type (
	Address         = hci.Address
	AddressType     = hci.AddressType
	AddressWithType = hci.AddressWithType
)

const (
	AddressTypePublic           = hci.AddressTypePublic
	AddressTypeRandom           = hci.AddressTypeRandom
	AddressTypeResolvablePublic = hci.AddressTypeResolvablePublic
	AddressTypeResolvableRandom = hci.AddressTypeResolvableRandom
)

// ParseAddress parses a colon-separated MAC-style address string.
func ParseAddress(s string) (Address, error) { return hci.ParseAddress(s) }
