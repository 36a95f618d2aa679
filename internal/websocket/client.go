package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
)

// ClientMessageHandler receives decoded client actions and the disconnect
// signal. HandleMessage errors are converted to an error event on the
// offending connection; they never terminate the read loop.
type ClientMessageHandler interface {
	HandleMessage(client *Client, msg *Message) error
	HandleDisconnect(client *Client)
}

// Client is one live duplex connection with an authenticated identity.
type Client struct {
	ID       string
	UserID   uuid.UUID
	Username string
	Role     string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub

	mu   sync.RWMutex
	room *uuid.UUID
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, username, role string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		Role:     role,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
	}
}

// CurrentRoom returns the room this connection is joined to, if any.
func (c *Client) CurrentRoom() (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.room == nil {
		return uuid.Nil, false
	}
	return *c.room, true
}

func (c *Client) setRoom(roomID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = &roomID
}

func (c *Client) clearRoom(roomID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room != nil && *c.room == roomID {
		c.room = nil
	}
}

// ReadPump reads client actions until the connection drops, then runs the
// disconnect cleanup exactly once.
func (c *Client) ReadPump(handler ClientMessageHandler) {
	defer func() {
		if handler != nil {
			handler.HandleDisconnect(c)
		}
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if msg.Type == TypePong {
			continue
		}

		if handler != nil {
			if err := handler.HandleMessage(c, &msg); err != nil {
				c.SendError(err.Error())
			}
		}
	}
}

// WritePump drains the send queue to the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent queues an outbound event on this connection only.
func (c *Client) SendEvent(msgType MessageType, eventID *uuid.UUID, payload interface{}) error {
	data, err := NewEvent(msgType, eventID, payload)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (c *Client) SendError(errorMsg string) {
	c.SendEvent(TypeError, nil, map[string]string{"error": errorMsg})
}
