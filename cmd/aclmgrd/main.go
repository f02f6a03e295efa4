// Command aclmgrd is a small interactive driver for the ACL manager,
// grounded on the teacher's test/hci/main.go flag-driven connect/scan
// test harness but upgraded to a urfave/cli.App per the teacher's go.mod
// direct dependency on that library.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/go-ble/acl"
	"github.com/go-ble/acl/linux/hci"
)

func main() {
	app := cli.NewApp()
	app.Name = "aclmgrd"
	app.Usage = "drive the ACL manager against a local controller"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "device", Value: 0, Usage: "HCI device index for the raw socket transport"},
		cli.StringFlag{Name: "h4-uart", Usage: "UART device path for an H4 transport, instead of the raw socket"},
		cli.UintFlag{Name: "baud", Value: 115200, Usage: "baud rate for --h4-uart"},
		cli.StringFlag{Name: "connect", Usage: "Classic BD_ADDR to connect to on startup, e.g. AA:BB:CC:DD:EE:FF"},
		cli.DurationFlag{Name: "duration", Value: 30 * time.Second, Usage: "how long to run before exiting"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "aclmgrd:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	transport, err := openTransport(c)
	if err != nil {
		return err
	}

	m, err := acl.New()
	if err != nil {
		return err
	}
	if err := m.Start(transport); err != nil {
		return err
	}
	defer m.Stop()

	m.RegisterConnectionRequestHandler(func(addr hci.Address) acl.ConnectionRequestDecision {
		fmt.Printf("incoming connection request from %s, accepting\n", addr)
		return acl.ConnectionRequestDecision{Accept: true, Role: hci.RoleSlave}
	})

	if addrFlag := c.String("connect"); addrFlag != "" {
		addr, err := hci.ParseAddress(addrFlag)
		if err != nil {
			return err
		}
		done := make(chan struct{})
		err = m.CreateConnection(addr, func(res acl.ConnectResult) {
			defer close(done)
			if res.Err != nil {
				fmt.Printf("connect to %s failed: %v\n", addr, res.Err)
				return
			}
			fmt.Printf("connected to %s, handle %d\n", addr, res.Conn.Handle())
		})
		if err != nil {
			return err
		}
		<-done
	}

	time.Sleep(c.Duration("duration"))

	snap := m.Diagnostics()
	fmt.Printf("live connections at exit: %d\n", len(snap.Connections))
	return nil
}

func openTransport(c *cli.Context) (io.ReadWriteCloser, error) {
	if path := c.String("h4-uart"); path != "" {
		return hci.NewUARTTransport(path, c.Uint("baud"))
	}
	return hci.NewRawSocketTransport(c.Int("device"))
}
