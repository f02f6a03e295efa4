package acl

import "github.com/pkg/errors"

// Sentinel errors returned synchronously by the public API when a request
// is rejected before ever reaching the controller, as opposed to a
// controller-reported failure delivered later through a callback.
var (
	// ErrNotStarted is returned by any operation attempted before Start.
	ErrNotStarted = errors.New("acl: manager not started")

	// ErrAlreadyConnecting is returned when CreateConnection or
	// CreateLeConnection is called for an address already in a
	// Connecting Set, and by CreateLeConnection while any other LE
	// attempt is still outstanding.
	ErrAlreadyConnecting = errors.New("acl: connection attempt already in progress for this address")

	// ErrUnknownHandle is returned by any per-handle operation on a
	// handle not present in the connection table, and by
	// LEConnectionUpdate on a connection that is not an LE link.
	ErrUnknownHandle = errors.New("acl: unknown connection handle")

	// ErrAlreadyDisconnected is returned by per-handle operations issued
	// against a connection that has already torn down.
	ErrAlreadyDisconnected = errors.New("acl: connection already disconnected")

	// ErrNoPendingConnect is returned by CancelConnect when there is no
	// matching in-flight connection attempt to cancel.
	ErrNoPendingConnect = errors.New("acl: no pending connection attempt for this address")

	// ErrLEUpdateAlreadyPending is returned when a second
	// LE-Connection-Update is requested on a handle before the first's
	// completion event has arrived.
	ErrLEUpdateAlreadyPending = errors.New("acl: an LE connection update is already pending on this handle")

	// ErrInvalidConnectionParams is returned when LE connection interval,
	// latency, or supervision timeout bounds fall outside the range the
	// controller accepts [Vol 2, Part E, 7.8.18], rejected synchronously
	// before any HCI command is issued.
	ErrInvalidConnectionParams = errors.New("acl: LE connection parameters out of range")
)
