package services

import (
	"chat-poll/domain"
	"chat-poll/errors"
	"chat-poll/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	participants *mocks.MockIParticipantRepository
	messages     *mocks.MockIMessageRepository
	service      *ChatService
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	service := NewChatService(slog.Default(), domain.FixedClock{At: now}, participants, messages)
	return fixture{participants: participants, messages: messages, service: service}
}

func TestChatService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("should register with the clock time", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		f.participants.EXPECT().Register("alice", now).Return(nil).Times(1)

		req.NoError(f.service.Register(ctx, domain.RegisterCommand{Name: "alice"}))
	})

	t.Run("should trim blanks around the name", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		f.participants.EXPECT().Register("bob", now).Return(nil).Times(1)

		req.NoError(f.service.Register(ctx, domain.RegisterCommand{Name: "  bob "}))
	})

	t.Run("should reject an empty name without touching the registry", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		f.participants.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

		for _, name := range []string{"", "   "} {
			err := f.service.Register(ctx, domain.RegisterCommand{Name: name})
			req.ErrorIs(err, errors.ErrValidation)
		}
	})

	t.Run("should propagate a conflict", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		f.participants.EXPECT().Register("alice", now).Return(errors.ErrParticipantAlreadyExists)

		err := f.service.Register(ctx, domain.RegisterCommand{Name: "alice"})
		req.ErrorIs(err, errors.ErrParticipantAlreadyExists)
	})
}

func TestChatService_PostMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("should append a message from a known sender", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		cmd := domain.PostMessageCommand{From: "alice", To: domain.Broadcast, Text: "hi", Kind: domain.ChatKind}

		f.participants.EXPECT().Exists("alice").Return(true, nil)
		f.messages.EXPECT().
			Append(domain.Message{From: "alice", To: domain.Broadcast, Text: "hi", Kind: domain.ChatKind, Time: now}).
			DoAndReturn(func(m domain.Message) (domain.Message, error) {
				m.Seq = 7
				return m, nil
			})

		stored, err := f.service.PostMessage(ctx, cmd)
		req.NoError(err)
		req.Equal(uint64(7), stored.Seq)
	})

	t.Run("should reject an unknown sender", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		f.participants.EXPECT().Exists("ghost").Return(false, nil)
		f.messages.EXPECT().Append(gomock.Any()).Times(0)

		_, err := f.service.PostMessage(ctx, domain.PostMessageCommand{
			From: "ghost", To: domain.Broadcast, Text: "boo", Kind: domain.ChatKind,
		})
		req.ErrorIs(err, errors.ErrValidation)
	})

	t.Run("should reject a status or unknown type", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		f.participants.EXPECT().Exists(gomock.Any()).Times(0)

		for _, kind := range []domain.MessageKind{domain.StatusKind, "shout", ""} {
			_, err := f.service.PostMessage(ctx, domain.PostMessageCommand{
				From: "alice", To: domain.Broadcast, Text: "hi", Kind: kind,
			})
			req.ErrorIs(err, errors.ErrValidation, string(kind))
		}
	})

	t.Run("should reject missing fields", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		_, err := f.service.PostMessage(ctx, domain.PostMessageCommand{From: "alice", Kind: domain.ChatKind})
		req.ErrorIs(err, errors.ErrValidation)
	})

	t.Run("should surface store failures", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		f.participants.EXPECT().Exists("alice").Return(false, errors.ErrStoreUnavailable)

		_, err := f.service.PostMessage(ctx, domain.PostMessageCommand{
			From: "alice", To: "bob", Text: "hi", Kind: domain.PrivateKind,
		})
		req.ErrorIs(err, errors.ErrStoreUnavailable)
	})
}

func TestChatService_GetMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("should pass the parsed limit to the log", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		expected := []domain.Message{{From: "x", To: domain.Broadcast, Text: "A", Kind: domain.ChatKind}}

		f.messages.EXPECT().Latest(gomock.Any(), 2).Return(expected, nil)

		got, err := f.service.GetMessages(ctx, domain.GetMessagesCommand{User: "alice", Limit: "2", HasLimit: true})
		req.NoError(err)
		req.Equal(expected, got)
	})

	t.Run("should read everything when no limit is given", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		f.messages.EXPECT().Latest(gomock.Any(), 0).Return(nil, nil)

		_, err := f.service.GetMessages(ctx, domain.GetMessagesCommand{User: "alice"})
		req.NoError(err)
	})

	t.Run("should reject invalid limits", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		f.messages.EXPECT().Latest(gomock.Any(), gomock.Any()).Times(0)

		for _, limit := range []string{"0", "-1", "ten"} {
			_, err := f.service.GetMessages(ctx, domain.GetMessagesCommand{User: "alice", Limit: limit, HasLimit: true})
			req.ErrorIs(err, errors.ErrInvalidArgument, limit)
		}
	})

	t.Run("should require a user", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)

		_, err := f.service.GetMessages(ctx, domain.GetMessagesCommand{})
		req.ErrorIs(err, errors.ErrValidation)
	})
}

func TestChatService_Heartbeat(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	f := newFixture(t)

	f.participants.EXPECT().Heartbeat("alice", now).Return(nil)
	f.participants.EXPECT().Heartbeat("ghost", now).Return(errors.ErrParticipantNotFound)

	req.NoError(f.service.Heartbeat(ctx, "alice"))
	req.ErrorIs(f.service.Heartbeat(ctx, "ghost"), errors.ErrParticipantNotFound)
	req.ErrorIs(f.service.Heartbeat(ctx, ""), errors.ErrValidation)
}

func TestChatService_Participants(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	expected := []domain.Participant{{Name: "alice", LastSeen: now}}

	f.participants.EXPECT().List().Return(expected, nil)

	got, err := f.service.Participants(context.Background())
	req.NoError(err)
	req.Equal(expected, got)
}
