package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewJoinMessage_IsBroadcastStatus(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	msg := NewJoinMessage("alice", at)

	req.Equal("alice", msg.From)
	req.Equal(Broadcast, msg.To)
	req.Equal(StatusKind, msg.Kind)
	req.Equal(JoinText, msg.Text)
	req.Equal(at, msg.Time)
	req.NotEmpty(msg.ID)
}

func TestNewLeaveMessage_IsBroadcastStatus(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	msg := NewLeaveMessage("bob", at)

	req.Equal("bob", msg.From)
	req.Equal(Broadcast, msg.To)
	req.Equal(StatusKind, msg.Kind)
	req.Equal(LeaveText, msg.Text)
}

func TestParticipant_IsStale(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	idle := 10 * time.Second

	// Exactly at the threshold the participant is retained
	req.False(Participant{Name: "a", LastSeen: now.Add(-idle)}.IsStale(now, idle))
	req.False(Participant{Name: "b", LastSeen: now.Add(-idle + time.Millisecond)}.IsStale(now, idle))
	req.True(Participant{Name: "c", LastSeen: now.Add(-idle - time.Millisecond)}.IsStale(now, idle))
}
