package chat

import (
	"sync"

	"github.com/google/uuid"
)

// TypingTracker holds the ephemeral per-room typing flags. Start and Stop
// report whether the flag actually changed, so the caller can decide about
// the broadcast under the same state transition instead of racing a separate
// read.
type TypingTracker struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]map[uuid.UUID]struct{}
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{
		rooms: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

func (t *TypingTracker) Start(eventID, userID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.rooms[eventID]
	if !ok {
		room = make(map[uuid.UUID]struct{})
		t.rooms[eventID] = room
	}
	if _, already := room[userID]; already {
		return false
	}
	room[userID] = struct{}{}
	return true
}

func (t *TypingTracker) Stop(eventID, userID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.rooms[eventID]
	if !ok {
		return false
	}
	if _, was := room[userID]; !was {
		return false
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(t.rooms, eventID)
	}
	return true
}

func (t *TypingTracker) IsTyping(eventID, userID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.rooms[eventID][userID]
	return ok
}
