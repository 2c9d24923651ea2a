package state

import "github.com/google/uuid"

// Manager is the room-membership registry shared by every live connection
// and every publisher. Implementations must be safe for concurrent use:
// joins, leaves, and fan-out reads race freely across connections.
type Manager interface {
	// --- Connection lifecycle ---
	RegisterConnection(sender Sender, subject string) (*Connection, error)
	// DeregisterConnection removes the connection from the registry and
	// from every room it had joined. Unknown ids are a no-op.
	DeregisterConnection(connID uuid.UUID) error
	GetConnection(connID uuid.UUID) (*Connection, bool)

	// --- Room membership ---
	// Join adds the connection to a room, creating the room if needed.
	// Joining a room already joined is a no-op.
	Join(connID uuid.UUID, roomID string) error
	// Leave removes the connection from a room. Leaving a room never
	// joined is a no-op, not an error.
	Leave(connID uuid.UUID, roomID string) error
	// RoomSenders snapshots the send capabilities of a room's current
	// members. An unknown room yields an empty slice.
	RoomSenders(roomID string) []Sender

	// --- Diagnostics / shutdown ---
	ConnectionCount() int
	RoomCount() int
	AllSenders() []Sender
}
