package dto

import "github.com/google/uuid"

// SendMessagePayload is the body of a send action on both the duplex and
// the HTTP path. Content bounds are enforced here, at the boundary, not in
// the chat core.
type SendMessagePayload struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

type DeleteMessagePayload struct {
	MessageID uuid.UUID `json:"message_id" binding:"required"`
}

// UserEvent announces a user joining or leaving a room.
type UserEvent struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Message  string    `json:"message,omitempty"`
}

// TypingEvent announces a typing state change to the rest of the room.
type TypingEvent struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

type MessageDeletedEvent struct {
	MessageID uuid.UUID `json:"message_id"`
}
