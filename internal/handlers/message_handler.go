package handlers

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/eventmgmt/chat/internal/chat"
	"github.com/eventmgmt/chat/internal/handlers/dto"
	ws "github.com/eventmgmt/chat/internal/websocket"
	"github.com/google/uuid"
)

// MessageHandler is the real-time gateway: it maps inbound duplex actions
// onto the chat service and fans the resulting events out to the room.
// Every returned error becomes an error event on the offending connection
// only.
type MessageHandler struct {
	svc *chat.Service
	hub *ws.Hub
}

func NewMessageHandler(svc *chat.Service, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{svc: svc, hub: hub}
}

func (h *MessageHandler) HandleMessage(client *ws.Client, msg *ws.Message) error {
	switch msg.Type {
	case ws.TypeJoinRoom:
		return h.handleJoin(client, msg)

	case ws.TypeLeaveRoom:
		return h.handleLeave(client, msg)

	case ws.TypeSendMessage:
		return h.handleSend(client, msg)

	case ws.TypeDeleteMessage:
		return h.handleDelete(client, msg)

	case ws.TypeStartTyping:
		return h.handleStartTyping(client, msg)

	case ws.TypeStopTyping:
		return h.handleStopTyping(client, msg)

	case ws.TypeListPresence:
		return h.handleListPresence(client, msg)

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		return nil
	}
}

func (h *MessageHandler) handleJoin(client *ws.Client, msg *ws.Message) error {
	if msg.EventID == nil {
		return ws.ErrInvalidMessage
	}
	eventID := *msg.EventID

	// One room per connection: joining a new room leaves the current one.
	if current, in := client.CurrentRoom(); in && current != eventID {
		h.leaveRoom(client, current)
	}

	snapshot, err := h.svc.Join(eventID, client.UserID, client.ID)
	if err != nil {
		return err
	}

	h.hub.JoinRoom(client, eventID)

	// Snapshot to the joiner first, then the join announcement to the rest,
	// then the refreshed presence list to everyone including the joiner.
	if err := client.SendEvent(ws.TypeJoinedRoom, &eventID, snapshot); err != nil {
		log.Printf("Failed to send snapshot to client %s: %v", client.ID, err)
	}

	h.broadcastExcept(client, eventID, ws.TypeUserJoined, dto.UserEvent{
		UserID:   client.UserID,
		Username: client.Username,
		Message:  fmt.Sprintf("%s joined the chat", client.Username),
	})

	h.broadcastPresence(eventID)

	log.Printf("User %s (%s) joined event %s chat", client.Username, client.UserID, eventID)
	return nil
}

func (h *MessageHandler) handleLeave(client *ws.Client, msg *ws.Message) error {
	if msg.EventID == nil {
		return ws.ErrInvalidMessage
	}
	if current, in := client.CurrentRoom(); !in || current != *msg.EventID {
		return ws.ErrNotInRoom
	}

	h.leaveRoom(client, *msg.EventID)
	return nil
}

func (h *MessageHandler) handleSend(client *ws.Client, msg *ws.Message) error {
	if msg.EventID == nil {
		return ws.ErrInvalidMessage
	}
	eventID := *msg.EventID

	var payload dto.SendMessagePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return ws.ErrInvalidMessage
	}
	if payload.Content == "" || len(payload.Content) > 1000 {
		return ws.ErrInvalidMessage
	}

	message, err := h.svc.Send(eventID, client.UserID, payload.Content)
	if err != nil {
		return err
	}

	h.svc.Touch(client.ID)

	// Sending implies the sender stopped typing.
	if h.svc.Typing().Stop(eventID, client.UserID) {
		h.broadcastExcept(client, eventID, ws.TypeUserStoppedTyping, dto.TypingEvent{
			UserID:   client.UserID,
			Username: client.Username,
		})
	}

	h.broadcast(eventID, ws.TypeMessageReceived, message)
	return nil
}

func (h *MessageHandler) handleDelete(client *ws.Client, msg *ws.Message) error {
	var payload dto.DeleteMessagePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return ws.ErrInvalidMessage
	}

	eventID, err := h.svc.Delete(payload.MessageID, client.UserID)
	if err != nil {
		return err
	}

	h.broadcast(eventID, ws.TypeMessageDeleted, dto.MessageDeletedEvent{MessageID: payload.MessageID})
	return nil
}

func (h *MessageHandler) handleStartTyping(client *ws.Client, msg *ws.Message) error {
	if msg.EventID == nil {
		return ws.ErrInvalidMessage
	}
	eventID := *msg.EventID

	if !h.svc.CanAccess(client.UserID, eventID) {
		return chat.ErrAccessDenied
	}

	if h.svc.Typing().Start(eventID, client.UserID) {
		h.broadcastExcept(client, eventID, ws.TypeUserStartedTyping, dto.TypingEvent{
			UserID:   client.UserID,
			Username: client.Username,
		})
	}

	h.svc.Touch(client.ID)
	return nil
}

func (h *MessageHandler) handleStopTyping(client *ws.Client, msg *ws.Message) error {
	if msg.EventID == nil {
		return ws.ErrInvalidMessage
	}
	eventID := *msg.EventID

	if h.svc.Typing().Stop(eventID, client.UserID) {
		h.broadcastExcept(client, eventID, ws.TypeUserStoppedTyping, dto.TypingEvent{
			UserID:   client.UserID,
			Username: client.Username,
		})
	}
	return nil
}

func (h *MessageHandler) handleListPresence(client *ws.Client, msg *ws.Message) error {
	if msg.EventID == nil {
		return ws.ErrInvalidMessage
	}

	users, err := h.svc.ConnectedUsers(*msg.EventID, client.UserID)
	if err != nil {
		return err
	}
	return client.SendEvent(ws.TypePresenceUpdated, msg.EventID, users)
}

// HandleDisconnect runs the full cleanup for a dropped or closing
// connection. It is idempotent: the registry removal decides whether any
// broadcasts go out, so a second invocation is a silent no-op.
func (h *MessageHandler) HandleDisconnect(client *ws.Client) {
	conn, removed := h.svc.Disconnect(client.ID)
	if !removed {
		return
	}
	eventID := conn.EventID

	h.hub.LeaveRoom(client, eventID)

	if h.svc.Typing().Stop(eventID, client.UserID) {
		h.broadcastExcept(client, eventID, ws.TypeUserStoppedTyping, dto.TypingEvent{
			UserID:   client.UserID,
			Username: client.Username,
		})
	}

	h.broadcast(eventID, ws.TypeUserLeft, dto.UserEvent{
		UserID:   client.UserID,
		Username: client.Username,
		Message:  fmt.Sprintf("%s left the chat", client.Username),
	})

	h.broadcastPresence(eventID)
}

// leaveRoom is the voluntary-leave variant of the disconnect cleanup: the
// connection stays alive but drops its room membership.
func (h *MessageHandler) leaveRoom(client *ws.Client, eventID uuid.UUID) {
	_, removed := h.svc.Disconnect(client.ID)

	h.hub.LeaveRoom(client, eventID)

	if h.svc.Typing().Stop(eventID, client.UserID) {
		h.broadcastExcept(client, eventID, ws.TypeUserStoppedTyping, dto.TypingEvent{
			UserID:   client.UserID,
			Username: client.Username,
		})
	}

	if removed {
		h.broadcast(eventID, ws.TypeUserLeft, dto.UserEvent{
			UserID:   client.UserID,
			Username: client.Username,
			Message:  fmt.Sprintf("%s left the chat", client.Username),
		})
		h.broadcastPresence(eventID)
	}
}

func (h *MessageHandler) broadcast(eventID uuid.UUID, msgType ws.MessageType, payload interface{}) {
	data, err := ws.NewEvent(msgType, &eventID, payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", msgType, err)
		return
	}
	h.hub.BroadcastToRoom(eventID, data)
}

func (h *MessageHandler) broadcastExcept(client *ws.Client, eventID uuid.UUID, msgType ws.MessageType, payload interface{}) {
	data, err := ws.NewEvent(msgType, &eventID, payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", msgType, err)
		return
	}
	h.hub.BroadcastToRoomExcept(eventID, data, client.ID)
}

func (h *MessageHandler) broadcastPresence(eventID uuid.UUID) {
	users, err := h.svc.RoomPresence(eventID)
	if err != nil {
		log.Printf("Failed to build presence list for event %s: %v", eventID, err)
		return
	}
	h.broadcast(eventID, ws.TypePresenceUpdated, users)
}
