package chat

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is the client-facing view of a stored message. CanDelete is
// computed relative to the requesting user, not the author.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	UserRole  string    `json:"user_role"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
	CanDelete bool      `json:"can_delete"`
}

type ConnectedUser struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	ConnectedAt time.Time `json:"connected_at"`
	IsTyping    bool      `json:"is_typing"`
}

// RoomSnapshot is the point-in-time room state handed to a client right
// after a successful join.
type RoomSnapshot struct {
	EventID             uuid.UUID       `json:"event_id"`
	EventTitle          string          `json:"event_title"`
	ConnectedUsersCount int             `json:"connected_users_count"`
	ConnectedUsers      []ConnectedUser `json:"connected_users"`
	RecentMessages      []ChatMessage   `json:"recent_messages"`
}
