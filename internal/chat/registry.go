package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Connection is one live duplex session joined to a room. Entries live only
// in memory and die with the process.
type Connection struct {
	ID             string
	UserID         uuid.UUID
	EventID        uuid.UUID
	ConnectedAt    time.Time
	LastActivityAt time.Time
}

// Presence is one deduplicated presence entry for a room: a user with at
// least one live connection, annotated with their earliest connect time.
type Presence struct {
	UserID      uuid.UUID
	ConnectedAt time.Time
}

// Registry is the single source of truth for live connections. One mutex
// serializes all mutation and room listing; the map is bounded by the number
// of concurrently connected users, so finer granularity buys nothing.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*Connection
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Connection),
		now:   time.Now,
	}
}

// Add registers a connection in a room. A duplicate connection id is treated
// as a reconnect and overwritten.
func (r *Registry) Add(connectionID string, userID, eventID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.conns[connectionID] = &Connection{
		ID:             connectionID,
		UserID:         userID,
		EventID:        eventID,
		ConnectedAt:    now,
		LastActivityAt: now,
	}
}

// Remove deletes a connection and returns the removed entry. Removing an
// unknown id is a no-op, so disconnect cleanup can run twice safely.
func (r *Registry) Remove(connectionID string) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connectionID]
	if !ok {
		return nil, false
	}
	delete(r.conns, connectionID)
	return conn, true
}

// Touch refreshes a connection's activity timestamp.
func (r *Registry) Touch(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.conns[connectionID]; ok {
		conn.LastActivityAt = r.now()
	}
}

// Get returns a copy of the connection entry.
func (r *Registry) Get(connectionID string) (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connectionID]
	if !ok {
		return Connection{}, false
	}
	return *conn, true
}

// ListByRoom returns one presence entry per distinct user connected to the
// room, keeping the earliest ConnectedAt when a user holds several
// connections (browser tabs).
func (r *Registry) ListByRoom(eventID uuid.UUID) []Presence {
	r.mu.Lock()
	defer r.mu.Unlock()

	earliest := make(map[uuid.UUID]time.Time)
	for _, conn := range r.conns {
		if conn.EventID != eventID {
			continue
		}
		if at, ok := earliest[conn.UserID]; !ok || conn.ConnectedAt.Before(at) {
			earliest[conn.UserID] = conn.ConnectedAt
		}
	}

	presences := make([]Presence, 0, len(earliest))
	for userID, at := range earliest {
		presences = append(presences, Presence{UserID: userID, ConnectedAt: at})
	}
	return presences
}
