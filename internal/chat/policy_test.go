package chat

import (
	"errors"
	"testing"

	"github.com/eventmgmt/chat/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubAccessStore struct {
	eventExists bool
	registered  bool
	err         error
}

func (s *stubAccessStore) EventExists(uuid.UUID) (bool, error) {
	return s.eventExists, s.err
}

func (s *stubAccessStore) IsRegistered(uuid.UUID, uuid.UUID) (bool, error) {
	return s.registered, s.err
}

func TestAccessPolicy_CanAccess(t *testing.T) {
	user := uuid.New()
	event := uuid.New()

	tests := []struct {
		name  string
		store stubAccessStore
		want  bool
	}{
		{"registered user of existing event", stubAccessStore{eventExists: true, registered: true}, true},
		{"missing registration", stubAccessStore{eventExists: true, registered: false}, false},
		{"missing event", stubAccessStore{eventExists: false, registered: true}, false},
		{"store failure fails closed", stubAccessStore{eventExists: true, registered: true, err: errors.New("db down")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewAccessPolicy(&tt.store)
			require.Equal(t, tt.want, policy.CanAccess(user, event))
		})
	}
}

func TestCanDelete(t *testing.T) {
	author := uuid.New()
	stranger := uuid.New()

	require.True(t, CanDelete(author, author, models.RoleUser), "authors delete their own messages")
	require.False(t, CanDelete(stranger, author, models.RoleUser), "non-admin strangers may not")
	require.True(t, CanDelete(stranger, author, models.RoleAdmin), "admins delete anything")
}
