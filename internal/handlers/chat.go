package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/eventmgmt/chat/internal/chat"
	"github.com/eventmgmt/chat/internal/handlers/dto"
	"github.com/eventmgmt/chat/internal/middleware"
	ws "github.com/eventmgmt/chat/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler is the request-response surface for clients that poll instead
// of holding a duplex connection. Authorization and rate limiting are the
// same as on the duplex path because both go through the chat service.
type ChatHandler struct {
	svc *chat.Service
	hub *ws.Hub
}

func NewChatHandler(svc *chat.Service, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{svc: svc, hub: hub}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func eventIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeChatError maps the service's typed outcomes to HTTP statuses; only
// unexpected failures become a 500.
func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// GetMessageHistory returns one page of room history, oldest first.
func (h *ChatHandler) GetMessageHistory(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 100 {
		pageSize = 100
	}

	messages, err := h.svc.History(eventID, userID, page, pageSize)
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": messages,
		"pagination": gin.H{
			"page":     page,
			"pageSize": pageSize,
			"hasMore":  len(messages) == pageSize,
		},
	})
}

// SendMessage persists a message and broadcasts it to the room's live
// connections, same as a duplex send.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)

	var payload dto.SendMessagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.svc.Send(eventID, userID, payload.Content)
	if err != nil {
		writeChatError(c, err)
		return
	}

	if data, err := ws.NewEvent(ws.TypeMessageReceived, &eventID, message); err == nil {
		h.hub.BroadcastToRoom(eventID, data)
	}

	c.JSON(http.StatusOK, gin.H{"data": message})
}

// DeleteMessage removes a message and notifies the message's room.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	userID, _ := currentUserID(c)

	eventID, err := h.svc.Delete(messageID, userID)
	if err != nil {
		writeChatError(c, err)
		return
	}

	if data, err := ws.NewEvent(ws.TypeMessageDeleted, &eventID, dto.MessageDeletedEvent{MessageID: messageID}); err == nil {
		h.hub.BroadcastToRoom(eventID, data)
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

// GetRoomInfo returns the room snapshot without registering a connection.
func (h *ChatHandler) GetRoomInfo(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)

	snapshot, err := h.svc.Snapshot(eventID, userID)
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

func (h *ChatHandler) GetConnectedUsers(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)

	users, err := h.svc.ConnectedUsers(eventID, userID)
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// CanJoin is the access probe.
func (h *ChatHandler) CanJoin(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"canJoin": h.svc.CanAccess(userID, eventID),
		"eventId": eventID,
		"userId":  userID,
	}})
}

// CheckRateLimit reports current admissibility without consuming quota.
func (h *ChatHandler) CheckRateLimit(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"canSendMessage": h.svc.CanSend(userID, eventID),
		"rateLimitInfo":  "maximum 10 messages per minute",
	}})
}
