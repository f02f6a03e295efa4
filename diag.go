package acl

import (
	"io"
	"time"

	"github.com/go-ble/acl/internal/diag"
	"github.com/go-ble/acl/linux/hci/connection"
)

type diagSource struct{ m *Manager }

func (d diagSource) Each(fn func(handle uint16, address string, role uint8, transport string, congestionDrops int)) {
	d.m.table.Each(func(rec *connection.Record) {
		fn(rec.Handle, rec.Address.String(), rec.Role, rec.Transport.String(), rec.CongestionDrops())
	})
}

// Diagnostics returns a JSON-serializable snapshot of every live
// connection, tagged with a session ID freshly minted for this call.
func (m *Manager) Diagnostics() diag.TableSnapshot {
	return diag.Snapshot(diag.NewSessionID(), diagSource{m}, time.Now())
}

// WriteDiagnostics writes the current Diagnostics snapshot to w as JSON.
func (m *Manager) WriteDiagnostics(w io.Writer) error {
	return diag.WriteJSON(w, m.Diagnostics())
}
