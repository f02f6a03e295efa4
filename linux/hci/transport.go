package hci

import (
	"io"
	"net"
	"time"

	"github.com/go-ble/acl/linux/hci/h4"
	"github.com/go-ble/acl/linux/hci/socket"
	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
)

// NewRawSocketTransport opens the Linux HCI user-channel socket for
// device id (-1 picks the first available device), the transport backend
// for a controller attached directly to the host's Bluetooth stack.
func NewRawSocketTransport(id int) (io.ReadWriteCloser, error) {
	return socket.NewSocket(id)
}

// NewUARTTransport opens an H4-framed UART transport over the serial port
// at path, the backend for a controller reached over a physical or
// virtual serial link.
func NewUARTTransport(path string, baudRate uint) (io.ReadWriteCloser, error) {
	return h4.New(serial.OpenOptions{
		PortName:          path,
		BaudRate:          baudRate,
		DataBits:          8,
		StopBits:          1,
		ParityMode:        serial.PARITY_NONE,
		RTSCTSFlowControl: true,
	})
}

// NewSocketBridgeTransport dials an H4-over-TCP bridge at addr, the
// backend for development setups where the controller sits behind a
// network-attached UART bridge rather than a local serial port.
func NewSocketBridgeTransport(addr string, timeout time.Duration) (io.ReadWriteCloser, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrap(err, "hci: dialing h4 socket bridge")
	}
	return h4.NewSocket(conn, timeout), nil
}
