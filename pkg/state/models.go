package state

import (
	"time"

	"github.com/google/uuid"
)

// Sender is the outbound capability of a live connection: a stable identity
// plus a non-blocking way to push one frame. The realtime gateway and the
// room registry depend on this rather than the transport type so they are
// testable without a network stack.
type Sender interface {
	ID() uuid.UUID
	Send(message []byte)
}

// Connection is the registry's record of one live session.
type Connection struct {
	ID uuid.UUID
	// Subject is the authenticated user id, empty for anonymous sessions.
	Subject string
	Sender  Sender
	// Rooms the connection has joined, keyed by room id. Mutated only
	// through the owning connection's Join/Leave requests.
	Rooms     map[string]struct{}
	CreatedAt time.Time
}

// Room is the implicit grouping of connections sharing a match id. Rooms
// are created on first join and removed when the last member leaves or
// disconnects; they are never persisted.
type Room struct {
	ID      string
	Members map[uuid.UUID]*Connection
}
