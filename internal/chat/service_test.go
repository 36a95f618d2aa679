package chat

import (
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/eventmgmt/chat/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	events   map[uuid.UUID]*models.Event
	regs     map[string]bool
	users    map[uuid.UUID]*models.User
	messages []*models.Message

	failCreate        bool
	requestedPageSize int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: make(map[uuid.UUID]*models.Event),
		regs:   make(map[string]bool),
		users:  make(map[uuid.UUID]*models.User),
	}
}

func regKey(userID, eventID uuid.UUID) string {
	return userID.String() + "|" + eventID.String()
}

func (s *fakeStore) EventExists(eventID uuid.UUID) (bool, error) {
	_, ok := s.events[eventID]
	return ok, nil
}

func (s *fakeStore) IsRegistered(userID, eventID uuid.UUID) (bool, error) {
	return s.regs[regKey(userID, eventID)], nil
}

func (s *fakeStore) GetEvent(id uuid.UUID) (*models.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, errors.New("event not found")
	}
	return event, nil
}

func (s *fakeStore) GetUser(id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (s *fakeStore) CreateMessage(message *models.Message) error {
	if s.failCreate {
		return errors.New("persistence down")
	}
	message.ID = uuid.New()
	copied := *message
	if user, ok := s.users[message.UserID]; ok {
		copied.User = *user
	}
	s.messages = append(s.messages, &copied)
	return nil
}

func (s *fakeStore) GetMessage(id uuid.UUID) (*models.Message, error) {
	for _, m := range s.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (s *fakeStore) DeleteMessage(id uuid.UUID) (bool, error) {
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) PageMessages(eventID uuid.UUID, page, pageSize int) ([]models.Message, error) {
	s.requestedPageSize = pageSize

	var room []*models.Message
	for _, m := range s.messages {
		if m.EventID == eventID {
			room = append(room, m)
		}
	}
	sort.Slice(room, func(i, j int) bool { return room[i].SentAt.After(room[j].SentAt) })

	offset := (page - 1) * pageSize
	if offset >= len(room) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(room) {
		end = len(room)
	}
	pageSlice := room[offset:end]

	out := make([]models.Message, len(pageSlice))
	for i, m := range pageSlice {
		out[len(pageSlice)-1-i] = *m
	}
	return out, nil
}

type serviceFixture struct {
	svc   *Service
	store *fakeStore
	event uuid.UUID
	alice uuid.UUID
	bob   uuid.UUID
	admin uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	store := newFakeStore()
	f := &serviceFixture{
		svc:   NewService(store, NewRegistry(), NewRateLimiter(), NewTypingTracker()),
		store: store,
		event: uuid.New(),
		alice: uuid.New(),
		bob:   uuid.New(),
		admin: uuid.New(),
	}

	store.events[f.event] = &models.Event{ID: f.event, Title: "Go Meetup"}
	store.users[f.alice] = &models.User{ID: f.alice, Username: "alice", Role: models.RoleUser}
	store.users[f.bob] = &models.User{ID: f.bob, Username: "bob", Role: models.RoleUser}
	store.users[f.admin] = &models.User{ID: f.admin, Username: "root", Role: models.RoleAdmin}

	// alice and admin are registered to the event; bob is not.
	store.regs[regKey(f.alice, f.event)] = true
	store.regs[regKey(f.admin, f.event)] = true

	return f
}

func TestService_OperationsDeniedWithoutRegistration(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Join(f.event, f.bob, "conn-bob")
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.Send(f.event, f.bob, "hello")
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.History(f.event, f.bob, 1, 10)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.ConnectedUsers(f.event, f.bob)
	require.ErrorIs(t, err, ErrAccessDenied)

	require.False(t, f.svc.CanAccess(f.bob, f.event))
}

func TestService_JoinReturnsSnapshotIncludingJoiner(t *testing.T) {
	f := newServiceFixture(t)

	snapshot, err := f.svc.Join(f.event, f.alice, "conn-1")
	require.NoError(t, err)

	require.Equal(t, "Go Meetup", snapshot.EventTitle)
	require.Equal(t, 1, snapshot.ConnectedUsersCount)
	require.Len(t, snapshot.ConnectedUsers, 1)
	require.Equal(t, f.alice, snapshot.ConnectedUsers[0].UserID)
	require.Empty(t, snapshot.RecentMessages)
}

func TestService_SendPersistsAndReturnsOwnerView(t *testing.T) {
	f := newServiceFixture(t)

	message, err := f.svc.Send(f.event, f.alice, "  hello  ")
	require.NoError(t, err)

	require.Equal(t, "hello", message.Content, "content is trimmed")
	require.Equal(t, f.alice, message.UserID)
	require.Equal(t, "alice", message.Username)
	require.True(t, message.CanDelete, "senders can always delete their own message")
	require.Len(t, f.store.messages, 1)
	require.False(t, message.SentAt.IsZero())
}

func TestService_SendRateLimited(t *testing.T) {
	f := newServiceFixture(t)

	for i := 0; i < 10; i++ {
		_, err := f.svc.Send(f.event, f.alice, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	_, err := f.svc.Send(f.event, f.alice, "one too many")
	require.ErrorIs(t, err, ErrRateLimited)

	// The limit is scoped per room; admin is unaffected too.
	_, err = f.svc.Send(f.event, f.admin, "still fine")
	require.NoError(t, err)
}

func TestService_FailedPersistDoesNotConsumeQuota(t *testing.T) {
	f := newServiceFixture(t)

	for i := 0; i < 9; i++ {
		_, err := f.svc.Send(f.event, f.alice, "ok")
		require.NoError(t, err)
	}

	f.store.failCreate = true
	_, err := f.svc.Send(f.event, f.alice, "lost")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRateLimited)

	// The failed write left room for one more send.
	f.store.failCreate = false
	_, err = f.svc.Send(f.event, f.alice, "tenth")
	require.NoError(t, err)

	_, err = f.svc.Send(f.event, f.alice, "eleventh")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestService_DeleteAuthorization(t *testing.T) {
	f := newServiceFixture(t)

	message, err := f.svc.Send(f.event, f.alice, "delete me")
	require.NoError(t, err)

	_, err = f.svc.Delete(message.ID, f.bob)
	require.ErrorIs(t, err, ErrForbidden)

	eventID, err := f.svc.Delete(message.ID, f.alice)
	require.NoError(t, err)
	require.Equal(t, f.event, eventID, "delete reports the room for a scoped broadcast")

	_, err = f.svc.Delete(message.ID, f.alice)
	require.ErrorIs(t, err, ErrMessageNotFound)

	message, err = f.svc.Send(f.event, f.alice, "admin target")
	require.NoError(t, err)

	_, err = f.svc.Delete(message.ID, f.admin)
	require.NoError(t, err)
}

func TestService_HistoryClampsPageSize(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.History(f.event, f.alice, 1, 1000)
	require.NoError(t, err)
	require.Equal(t, 100, f.store.requestedPageSize)

	_, err = f.svc.History(f.event, f.alice, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 50, f.store.requestedPageSize)
}

func TestService_HistoryPagesNewestFirstChronologicalWithin(t *testing.T) {
	f := newServiceFixture(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		f.store.messages = append(f.store.messages, &models.Message{
			ID:      uuid.New(),
			EventID: f.event,
			UserID:  f.alice,
			Content: fmt.Sprintf("m%d", i+1),
			SentAt:  base.Add(time.Duration(i) * time.Minute),
			User:    *f.store.users[f.alice],
		})
	}

	// Page 1 is the most recent complete page, oldest-to-newest inside it.
	page1, err := f.svc.History(f.event, f.alice, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, "m4", page1[0].Content)
	require.Equal(t, "m5", page1[1].Content)
	require.True(t, page1[0].SentAt.Before(page1[1].SentAt))

	page3, err := f.svc.History(f.event, f.alice, 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	require.Equal(t, "m1", page3[0].Content)
}

func TestService_HistoryCanDeleteRelativeToRequester(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Send(f.event, f.alice, "mine")
	require.NoError(t, err)

	history, err := f.svc.History(f.event, f.alice, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.True(t, history[0].CanDelete)

	history, err = f.svc.History(f.event, f.admin, 1, 10)
	require.NoError(t, err)
	require.True(t, history[0].CanDelete, "admins may delete anything")
}

func TestService_ConnectedUsersCarriesTypingFlag(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Join(f.event, f.alice, "conn-1")
	require.NoError(t, err)
	_, err = f.svc.Join(f.event, f.admin, "conn-2")
	require.NoError(t, err)

	f.svc.Typing().Start(f.event, f.alice)

	users, err := f.svc.ConnectedUsers(f.event, f.admin)
	require.NoError(t, err)
	require.Len(t, users, 2)

	// Sorted by username: alice before root.
	require.Equal(t, "alice", users[0].Username)
	require.True(t, users[0].IsTyping)
	require.False(t, users[1].IsTyping)
}

func TestService_DisconnectIsIdempotent(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Join(f.event, f.alice, "conn-1")
	require.NoError(t, err)

	conn, removed := f.svc.Disconnect("conn-1")
	require.True(t, removed)
	require.Equal(t, f.event, conn.EventID)

	_, removed = f.svc.Disconnect("conn-1")
	require.False(t, removed, "second cleanup must be a no-op")
}
