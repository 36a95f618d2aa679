package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	// System types
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"

	// Inbound client actions
	TypeJoinRoom      MessageType = "join_room"
	TypeLeaveRoom     MessageType = "leave_room"
	TypeSendMessage   MessageType = "send_message"
	TypeDeleteMessage MessageType = "delete_message"
	TypeStartTyping   MessageType = "start_typing"
	TypeStopTyping    MessageType = "stop_typing"
	TypeListPresence  MessageType = "list_presence"

	// Outbound room events
	TypeJoinedRoom        MessageType = "joined_room"
	TypeUserJoined        MessageType = "user_joined"
	TypeUserLeft          MessageType = "user_left"
	TypePresenceUpdated   MessageType = "presence_updated"
	TypeMessageReceived   MessageType = "message_received"
	TypeMessageDeleted    MessageType = "message_deleted"
	TypeUserStartedTyping MessageType = "user_started_typing"
	TypeUserStoppedTyping MessageType = "user_stopped_typing"
)

// Message is the wire envelope for both directions of the duplex channel.
type Message struct {
	Type      MessageType     `json:"type"`
	EventID   *uuid.UUID      `json:"event_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent marshals an outbound envelope.
func NewEvent(msgType MessageType, eventID *uuid.UUID, payload interface{}) ([]byte, error) {
	msg := Message{
		Type:      msgType,
		EventID:   eventID,
		Timestamp: time.Now(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Data = data
	}
	return json.Marshal(msg)
}

// Hub tracks live clients and their room subscriptions and fans outbound
// events into per-client send queues. It is pure group bookkeeping; deciding
// what to broadcast and in which order is the message handler's job.
type Hub struct {
	clients map[string]*Client

	// Room subscriptions, keyed by event id then connection id.
	rooms map[uuid.UUID]map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[uuid.UUID]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run drives registration and the keepalive ticker until Stop.
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop shuts down the hub and closes every live connection.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[uuid.UUID]map[string]*Client)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	log.Printf("Client registered: %s (user %s)", client.ID, client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	if roomID, in := client.CurrentRoom(); in {
		h.removeFromRoomUnsafe(client, roomID)
	}

	delete(h.clients, client.ID)
	close(client.Send)

	log.Printf("Client unregistered: %s (user %s)", client.ID, client.UserID)
}

// JoinRoom subscribes a client to a room's broadcast group. A connection is
// in at most one room; joining another room implies leaving the current one.
func (h *Hub) JoinRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, in := client.CurrentRoom(); in && current != roomID {
		h.removeFromRoomUnsafe(client, current)
	}

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.ID] = client
	client.setRoom(roomID)
}

// LeaveRoom unsubscribes the client. A no-op if the client is not in the room.
func (h *Hub) LeaveRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, roomID)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, roomID uuid.UUID) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, in := room[client.ID]; !in {
		return
	}

	delete(room, client.ID)
	client.clearRoom(roomID)

	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
}

// BroadcastToRoom queues the payload for every connection in the room.
func (h *Hub) BroadcastToRoom(roomID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.broadcastToRoomExcept(roomID, message, "")
}

// BroadcastToRoomExcept queues the payload for every connection in the room
// except the named one.
func (h *Hub) BroadcastToRoomExcept(roomID uuid.UUID, message []byte, excludeID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.broadcastToRoomExcept(roomID, message, excludeID)
}

func (h *Hub) broadcastToRoomExcept(roomID uuid.UUID, message []byte, excludeID string) {
	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			if client.ID == excludeID {
				continue
			}
			select {
			case client.Send <- message:
			default:
				log.Printf("Client %s send channel full, dropping event", client.ID)
			}
		}
	}
}

// RoomSize reports the number of connections currently subscribed to a room.
func (h *Hub) RoomSize(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomID])
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := NewEvent(TypePing, nil, nil)
	if err != nil {
		return
	}
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}
