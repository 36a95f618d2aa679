package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventmgmt/chat/internal/database"
	"github.com/eventmgmt/chat/internal/handlers/dto"
	"github.com/eventmgmt/chat/internal/models"
)

// EventHandler is the thin CRUD boundary around events and registrations.
// Registration rows written here are what the chat access policy reads.
type EventHandler struct {
	db *database.Database
}

func NewEventHandler(db *database.Database) *EventHandler {
	return &EventHandler{db: db}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := currentUserID(c)
	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		CreatedBy:   userID,
		CreatedAt:   time.Now(),
	}

	if err := h.db.CreateEvent(event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": event})
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.db.ListEvents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	event, err := h.db.GetEvent(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": event})
}

// Register adds the current user to the event.
func (h *EventHandler) Register(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)

	exists, err := h.db.EventExists(eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check event"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}

	if err := h.db.RegisterUser(userID, eventID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "registered to event"})
}

// Unregister revokes the current user's registration. The chat access
// policy sees the revocation on its next check.
func (h *EventHandler) Unregister(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, _ := currentUserID(c)

	if err := h.db.UnregisterUser(userID, eventID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unregister"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unregistered from event"})
}
