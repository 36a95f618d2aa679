package chat

import (
	"github.com/eventmgmt/chat/internal/models"
	"github.com/google/uuid"
)

// AccessStore is the slice of the persistence layer the policy needs:
// event existence and registration membership.
type AccessStore interface {
	EventExists(eventID uuid.UUID) (bool, error)
	IsRegistered(userID, eventID uuid.UUID) (bool, error)
}

type AccessPolicy struct {
	store AccessStore
}

func NewAccessPolicy(store AccessStore) *AccessPolicy {
	return &AccessPolicy{store: store}
}

// CanAccess reports whether the user may observe or post to the event's chat.
// Fails closed: a missing event, a missing registration or a store error all
// evaluate to false. Callers must re-check per request; registrations can be
// revoked between calls.
func (p *AccessPolicy) CanAccess(userID, eventID uuid.UUID) bool {
	exists, err := p.store.EventExists(eventID)
	if err != nil || !exists {
		return false
	}

	registered, err := p.store.IsRegistered(userID, eventID)
	if err != nil {
		return false
	}
	return registered
}

// CanDelete reports whether the requester may delete a message written by
// author: own messages always, any message for admins.
func CanDelete(requesterID, authorID uuid.UUID, requesterRole string) bool {
	if requesterID == authorID {
		return true
	}
	return requesterRole == models.RoleAdmin
}
