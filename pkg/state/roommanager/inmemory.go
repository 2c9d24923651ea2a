package roommanager

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/M-uzair-abbasi/YaarFetch/pkg/state"
	"github.com/google/uuid"
)

// InMemoryManager keeps the whole registry in process memory. One mutex
// guards both maps: membership mutations touch a connection and a room
// together, and taking them under a single lock makes a join racing a
// leave atomic.
type InMemoryManager struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*state.Connection
	rooms map[string]*state.Room

	logger *slog.Logger
}

var _ state.Manager = (*InMemoryManager)(nil)

func NewInMemoryManager(logger *slog.Logger) *InMemoryManager {
	return &InMemoryManager{
		conns:  make(map[uuid.UUID]*state.Connection),
		rooms:  make(map[string]*state.Room),
		logger: logger.With(slog.String("component", "room_manager")),
	}
}

func (m *InMemoryManager) RegisterConnection(sender state.Sender, subject string) (*state.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	connID := sender.ID()
	if _, exists := m.conns[connID]; exists {
		return nil, errors.New("connection is already registered")
	}
	conn := &state.Connection{
		ID:        connID,
		Subject:   subject,
		Sender:    sender,
		Rooms:     make(map[string]struct{}),
		CreatedAt: time.Now(),
	}
	m.conns[connID] = conn
	m.logger.Debug("Connection registered", slog.String("connID", connID.String()))
	return conn, nil
}

func (m *InMemoryManager) DeregisterConnection(connID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.conns[connID]
	if !ok {
		// already deregistered
		return nil
	}
	for roomID := range conn.Rooms {
		m.removeMemberLocked(roomID, conn)
	}
	delete(m.conns, connID)
	m.logger.Debug("Connection deregistered", slog.String("connID", connID.String()))
	return nil
}

func (m *InMemoryManager) GetConnection(connID uuid.UUID) (*state.Connection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, ok := m.conns[connID]
	return conn, ok
}

func (m *InMemoryManager) Join(connID uuid.UUID, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.conns[connID]
	if !ok {
		return errors.New("cannot join room: connection not registered")
	}
	if _, already := conn.Rooms[roomID]; already {
		return nil
	}

	room, exists := m.rooms[roomID]
	if !exists {
		room = &state.Room{
			ID:      roomID,
			Members: make(map[uuid.UUID]*state.Connection),
		}
		m.rooms[roomID] = room
	}
	room.Members[connID] = conn
	conn.Rooms[roomID] = struct{}{}

	m.logger.Debug("Connection joined room",
		slog.String("connID", connID.String()),
		slog.String("roomID", roomID),
	)
	return nil
}

func (m *InMemoryManager) Leave(connID uuid.UUID, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.conns[connID]
	if !ok {
		return errors.New("cannot leave room: connection not registered")
	}
	if _, member := conn.Rooms[roomID]; !member {
		// leaving a room never joined is a no-op
		return nil
	}
	delete(conn.Rooms, roomID)
	m.removeMemberLocked(roomID, conn)

	m.logger.Debug("Connection left room",
		slog.String("connID", connID.String()),
		slog.String("roomID", roomID),
	)
	return nil
}

// removeMemberLocked drops a connection from a room's member map and
// deletes the room once empty. Callers hold m.mu.
func (m *InMemoryManager) removeMemberLocked(roomID string, conn *state.Connection) {
	room, ok := m.rooms[roomID]
	if !ok {
		return
	}
	delete(room.Members, conn.ID)
	if len(room.Members) == 0 {
		delete(m.rooms, roomID)
		m.logger.Debug("Removed empty room", slog.String("roomID", roomID))
	}
}

func (m *InMemoryManager) RoomSenders(roomID string) []state.Sender {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil
	}
	senders := make([]state.Sender, 0, len(room.Members))
	for _, conn := range room.Members {
		senders = append(senders, conn.Sender)
	}
	return senders
}

func (m *InMemoryManager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

func (m *InMemoryManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

func (m *InMemoryManager) AllSenders() []state.Sender {
	m.mu.RLock()
	defer m.mu.RUnlock()
	senders := make([]state.Sender, 0, len(m.conns))
	for _, conn := range m.conns {
		senders = append(senders, conn.Sender)
	}
	return senders
}
