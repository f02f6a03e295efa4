// Package diag provides JSON snapshots of the manager's live connection
// table and per-handle congestion counters, grounded on the teacher's
// cache package's jsoniter marshal/unmarshal shape but writing to a
// caller-supplied io.Writer instead of a cache file on disk.
package diag

import (
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"
)

// ConnectionSnapshot is one live connection's diagnostic state at the
// moment Snapshot was taken.
type ConnectionSnapshot struct {
	Handle          uint16 `json:"handle"`
	Address         string `json:"address"`
	Role            uint8  `json:"role"`
	Transport       string `json:"transport"`
	CongestionDrops int    `json:"congestion_drops"`
}

// TableSnapshot is the full diagnostic dump of the manager's connection
// table, tagged with a session ID so repeated dumps across handle reuse
// (a handle torn down and later reassigned to a different peer) can still
// be told apart. The ID appears only in the snapshot, not in log lines.
type TableSnapshot struct {
	SessionID   string               `json:"session_id"`
	TakenAt     time.Time            `json:"taken_at"`
	Connections []ConnectionSnapshot `json:"connections"`
}

// NewSessionID mints a random diagnostic session identifier for tagging a
// snapshot. Per-connection loggers do not carry it.
func NewSessionID() string {
	return uuid.New().String()
}

// Source is whatever can enumerate the manager's live connections; the
// root package's diagSource adapter satisfies it by walking the manager's
// connection.Table.
type Source interface {
	Each(fn func(handle uint16, address string, role uint8, transport string, congestionDrops int))
}

// Snapshot builds a TableSnapshot by walking src.
func Snapshot(sessionID string, src Source, now time.Time) TableSnapshot {
	snap := TableSnapshot{SessionID: sessionID, TakenAt: now}
	src.Each(func(handle uint16, address string, role uint8, transport string, congestionDrops int) {
		snap.Connections = append(snap.Connections, ConnectionSnapshot{
			Handle:          handle,
			Address:         address,
			Role:            role,
			Transport:       transport,
			CongestionDrops: congestionDrops,
		})
	})
	return snap
}

// WriteJSON marshals snap to w.
func WriteJSON(w io.Writer, snap TableSnapshot) error {
	b, err := jsoniter.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
