package chat

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/eventmgmt/chat/internal/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	defaultHistoryPageSize = 50
	maxHistoryPageSize     = 100
	snapshotHistorySize    = 20
)

type EventStore interface {
	GetEvent(id uuid.UUID) (*models.Event, error)
}

type UserStore interface {
	GetUser(id uuid.UUID) (*models.User, error)
}

// MessageStore persists room messages. GetMessage returns ErrMessageNotFound
// for a missing id; id and SentAt assignment happen on create.
type MessageStore interface {
	CreateMessage(message *models.Message) error
	GetMessage(id uuid.UUID) (*models.Message, error)
	DeleteMessage(id uuid.UUID) (bool, error)
	PageMessages(eventID uuid.UUID, page, pageSize int) ([]models.Message, error)
}

// Store is the full persistence surface the orchestrator needs. *database.Database
// satisfies it.
type Store interface {
	AccessStore
	EventStore
	UserStore
	MessageStore
}

// Service is the synchronous core behind the gateway: every operation is
// policy-checked here, and all room state (connections, typing flags, rate
// windows) lives in components owned by the service.
type Service struct {
	store    Store
	policy   *AccessPolicy
	limiter  *RateLimiter
	registry *Registry
	typing   *TypingTracker
}

func NewService(store Store, registry *Registry, limiter *RateLimiter, typing *TypingTracker) *Service {
	return &Service{
		store:    store,
		policy:   NewAccessPolicy(store),
		limiter:  limiter,
		registry: registry,
		typing:   typing,
	}
}

func (s *Service) CanAccess(userID, eventID uuid.UUID) bool {
	return s.policy.CanAccess(userID, eventID)
}

// CanSend is the non-consuming rate-limit probe.
func (s *Service) CanSend(userID, eventID uuid.UUID) bool {
	return s.limiter.Allow(userID.String(), eventID.String())
}

func (s *Service) Touch(connectionID string) {
	s.registry.Touch(connectionID)
}

// Join registers the connection in the room and returns a consistent
// snapshot. The presence list is taken after the registry mutation, so the
// joining user sees themselves in it.
func (s *Service) Join(eventID, userID uuid.UUID, connectionID string) (*RoomSnapshot, error) {
	if !s.policy.CanAccess(userID, eventID) {
		return nil, ErrAccessDenied
	}

	s.registry.Add(connectionID, userID, eventID)

	return s.Snapshot(eventID, userID)
}

// Snapshot is the read-only variant of Join used by the polling surface: the
// same room state without registering a connection.
func (s *Service) Snapshot(eventID, userID uuid.UUID) (*RoomSnapshot, error) {
	if !s.policy.CanAccess(userID, eventID) {
		return nil, ErrAccessDenied
	}

	event, err := s.store.GetEvent(eventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}

	connected, err := s.connectedUsers(eventID)
	if err != nil {
		return nil, err
	}

	recent, err := s.History(eventID, userID, 1, snapshotHistorySize)
	if err != nil {
		return nil, err
	}

	return &RoomSnapshot{
		EventID:             eventID,
		EventTitle:          event.Title,
		ConnectedUsersCount: len(connected),
		ConnectedUsers:      connected,
		RecentMessages:      recent,
	}, nil
}

// Send persists a message for the room. Quota is checked before the write
// and recorded only after it succeeds, so a failed persist never consumes
// quota. The returned view carries the sender's own CanDelete flag.
func (s *Service) Send(eventID, userID uuid.UUID, content string) (*ChatMessage, error) {
	if !s.policy.CanAccess(userID, eventID) {
		return nil, ErrAccessDenied
	}

	if !s.limiter.Allow(userID.String(), eventID.String()) {
		return nil, ErrRateLimited
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	message := &models.Message{
		EventID: eventID,
		UserID:  userID,
		Content: strings.TrimSpace(content),
		SentAt:  time.Now().UTC(),
	}
	if err := s.store.CreateMessage(message); err != nil {
		log.Printf("Failed to save message for event %s: %v", eventID, err)
		return nil, fmt.Errorf("save message: %w", err)
	}

	s.limiter.Record(userID.String(), eventID.String())

	return &ChatMessage{
		ID:        message.ID,
		EventID:   message.EventID,
		UserID:    message.UserID,
		Username:  user.Username,
		UserRole:  user.Role,
		Content:   message.Content,
		SentAt:    message.SentAt,
		CanDelete: CanDelete(userID, message.UserID, user.Role),
	}, nil
}

// Delete removes a message and returns the room it belonged to, so the
// caller can scope the delete broadcast to that room instead of flooding
// every connection.
func (s *Service) Delete(messageID, requesterID uuid.UUID) (uuid.UUID, error) {
	message, err := s.store.GetMessage(messageID)
	if err != nil {
		return uuid.Nil, err
	}

	requester, err := s.store.GetUser(requesterID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load user: %w", err)
	}

	if !CanDelete(requesterID, message.UserID, requester.Role) {
		return uuid.Nil, ErrForbidden
	}

	found, err := s.store.DeleteMessage(messageID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("delete message: %w", err)
	}
	if !found {
		return uuid.Nil, ErrMessageNotFound
	}

	return message.EventID, nil
}

// History returns one page of room messages in chronological order with
// per-requester CanDelete flags. pageSize is clamped to a hard ceiling
// regardless of what the caller asks for.
func (s *Service) History(eventID, requesterID uuid.UUID, page, pageSize int) ([]ChatMessage, error) {
	if !s.policy.CanAccess(requesterID, eventID) {
		return nil, ErrAccessDenied
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultHistoryPageSize
	}
	if pageSize > maxHistoryPageSize {
		pageSize = maxHistoryPageSize
	}

	requester, err := s.store.GetUser(requesterID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	messages, err := s.store.PageMessages(eventID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	return lo.Map(messages, func(m models.Message, _ int) ChatMessage {
		return ChatMessage{
			ID:        m.ID,
			EventID:   m.EventID,
			UserID:    m.UserID,
			Username:  m.User.Username,
			UserRole:  m.User.Role,
			Content:   m.Content,
			SentAt:    m.SentAt,
			CanDelete: CanDelete(requesterID, m.UserID, requester.Role),
		}
	}), nil
}

// ConnectedUsers returns the deduplicated presence view of a room.
func (s *Service) ConnectedUsers(eventID, requesterID uuid.UUID) ([]ConnectedUser, error) {
	if !s.policy.CanAccess(requesterID, eventID) {
		return nil, ErrAccessDenied
	}
	return s.connectedUsers(eventID)
}

func (s *Service) connectedUsers(eventID uuid.UUID) ([]ConnectedUser, error) {
	presences := s.registry.ListByRoom(eventID)

	users := make([]ConnectedUser, 0, len(presences))
	for _, p := range presences {
		user, err := s.store.GetUser(p.UserID)
		if err != nil {
			return nil, fmt.Errorf("load user: %w", err)
		}
		users = append(users, ConnectedUser{
			UserID:      p.UserID,
			Username:    user.Username,
			Role:        user.Role,
			ConnectedAt: p.ConnectedAt,
			IsTyping:    s.typing.IsTyping(eventID, p.UserID),
		})
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// Disconnect removes the connection from the registry. It is safe to call
// more than once for the same id; only the first call reports a removal.
func (s *Service) Disconnect(connectionID string) (*Connection, bool) {
	conn, ok := s.registry.Remove(connectionID)
	if !ok {
		return nil, false
	}
	log.Printf("User %s disconnected from event %s chat", conn.UserID, conn.EventID)
	return conn, true
}

// Typing exposes the tracker to the gateway, which owns the broadcast side
// of typing state.
func (s *Service) Typing() *TypingTracker {
	return s.typing
}

// RoomPresence is the ungated presence view used by the gateway when it
// broadcasts presence updates to a room whose members are already
// authorized.
func (s *Service) RoomPresence(eventID uuid.UUID) ([]ConnectedUser, error) {
	return s.connectedUsers(eventID)
}
