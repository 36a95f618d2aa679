package chat

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTypingTracker_StartReportsChange(t *testing.T) {
	tr := NewTypingTracker()
	event := uuid.New()
	user := uuid.New()

	require.True(t, tr.Start(event, user))
	require.False(t, tr.Start(event, user), "second start must not report a change")
	require.True(t, tr.IsTyping(event, user))
}

func TestTypingTracker_StopReportsChange(t *testing.T) {
	tr := NewTypingTracker()
	event := uuid.New()
	user := uuid.New()

	require.False(t, tr.Stop(event, user), "stop without start is a no-op")

	tr.Start(event, user)
	require.True(t, tr.Stop(event, user))
	require.False(t, tr.Stop(event, user))
	require.False(t, tr.IsTyping(event, user))
}

func TestTypingTracker_RoomsAreIndependent(t *testing.T) {
	tr := NewTypingTracker()
	user := uuid.New()
	roomA := uuid.New()
	roomB := uuid.New()

	tr.Start(roomA, user)

	require.True(t, tr.IsTyping(roomA, user))
	require.False(t, tr.IsTyping(roomB, user))
}
