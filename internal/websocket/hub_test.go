package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: uuid.New(),
		Send:   make(chan []byte, 8),
		Hub:    hub,
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	default:
		t.Fatal("expected a queued event")
		return Message{}
	}
}

func TestHub_BroadcastToRoom(t *testing.T) {
	hub := NewHub()
	room := uuid.New()

	a := newTestClient(hub)
	b := newTestClient(hub)
	hub.JoinRoom(a, room)
	hub.JoinRoom(b, room)

	data, err := NewEvent(TypeMessageReceived, &room, map[string]string{"content": "hi"})
	require.NoError(t, err)
	hub.BroadcastToRoom(room, data)

	require.Equal(t, TypeMessageReceived, receive(t, a).Type)
	require.Equal(t, TypeMessageReceived, receive(t, b).Type)
}

func TestHub_BroadcastToRoomExceptSkipsSender(t *testing.T) {
	hub := NewHub()
	room := uuid.New()

	a := newTestClient(hub)
	b := newTestClient(hub)
	hub.JoinRoom(a, room)
	hub.JoinRoom(b, room)

	data, err := NewEvent(TypeUserStartedTyping, &room, nil)
	require.NoError(t, err)
	hub.BroadcastToRoomExcept(room, data, a.ID)

	require.Empty(t, a.Send)
	require.Equal(t, TypeUserStartedTyping, receive(t, b).Type)
}

func TestHub_JoinSecondRoomLeavesFirst(t *testing.T) {
	hub := NewHub()
	roomA := uuid.New()
	roomB := uuid.New()

	c := newTestClient(hub)
	hub.JoinRoom(c, roomA)
	require.Equal(t, 1, hub.RoomSize(roomA))

	hub.JoinRoom(c, roomB)
	require.Equal(t, 0, hub.RoomSize(roomA))
	require.Equal(t, 1, hub.RoomSize(roomB))

	current, in := c.CurrentRoom()
	require.True(t, in)
	require.Equal(t, roomB, current)
}

func TestHub_LeaveRoomIsIdempotent(t *testing.T) {
	hub := NewHub()
	room := uuid.New()

	c := newTestClient(hub)
	hub.JoinRoom(c, room)

	hub.LeaveRoom(c, room)
	hub.LeaveRoom(c, room)

	require.Equal(t, 0, hub.RoomSize(room))
	_, in := c.CurrentRoom()
	require.False(t, in)
}

func TestHub_BroadcastToUnknownRoomIsNoop(t *testing.T) {
	hub := NewHub()

	data, err := NewEvent(TypeMessageReceived, nil, nil)
	require.NoError(t, err)
	hub.BroadcastToRoom(uuid.New(), data)
}

func TestNewEventEnvelope(t *testing.T) {
	room := uuid.New()
	data, err := NewEvent(TypeUserJoined, &room, map[string]string{"username": "alice"})
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, TypeUserJoined, msg.Type)
	require.Equal(t, room, *msg.EventID)
	require.False(t, msg.Timestamp.IsZero())

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	require.Equal(t, "alice", payload["username"])
}
