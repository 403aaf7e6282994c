package e2e

import (
	"chat-poll/domain"
	"chat-poll/infrastructure/http/client"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseHTTPSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) TestRegisterPostAndPoll() {
	alice := s.UniqueName("alice")

	s.Run("Step 1: Register twice", func() {
		s.Step("Register "+alice, func(ctx context.Context) {
			s.Require().NoError(s.Client.Register(ctx, alice))

			err := s.Client.Register(ctx, alice)
			var statusErr *client.StatusError
			s.Require().True(errors.As(err, &statusErr))
			s.Require().Equal(http.StatusConflict, statusErr.Code)
		})
	})

	s.Run("Step 2: Post and read back newest first", func() {
		s.Step("Post hi to all", func(ctx context.Context) {
			s.Require().NoError(s.Client.Send(ctx, alice, domain.Broadcast, "hi"))

			messages, err := s.Client.Messages(ctx, alice, 0)
			s.Require().NoError(err)
			s.Require().GreaterOrEqual(len(messages), 2)
			// Other participants may join or leave in between on a shared server
			own := lo.Filter(messages, func(m client.Message, _ int) bool { return m.From == alice })
			s.Require().Len(own, 2)
			s.Require().Equal("hi", own[0].Text)

			_, joined := lo.Find(messages, func(m client.Message) bool {
				return m.From == alice && m.Type == string(domain.StatusKind) && m.Text == domain.JoinText
			})
			s.Require().True(joined, "join status message should be visible")
		})
	})

	s.Run("Step 3: Limit and unknown heartbeat", func() {
		s.Step("limit=1 returns a single message", func(ctx context.Context) {
			messages, err := s.Client.Messages(ctx, alice, 1)
			s.Require().NoError(err)
			s.Require().Len(messages, 1)

			var statusErr *client.StatusError
			err = s.Client.Heartbeat(ctx, s.UniqueName("ghost"))
			s.Require().True(errors.As(err, &statusErr))
			s.Require().Equal(http.StatusNotFound, statusErr.Code)
		})
	})
}

func (s *testChatSuite) TestPrivateMessages() {
	alice, bob, carol := s.UniqueName("alice"), s.UniqueName("bob"), s.UniqueName("carol")

	s.Step("Private message is only seen by both ends", func(ctx context.Context) {
		for _, name := range []string{alice, bob, carol} {
			s.Require().NoError(s.Client.Register(ctx, name))
		}
		s.Require().NoError(s.Client.Send(ctx, alice, bob, "psst"))

		for user, expected := range map[string]bool{alice: true, bob: true, carol: false} {
			messages, err := s.Client.Messages(ctx, user, 0)
			s.Require().NoError(err)
			seen := lo.ContainsBy(messages, func(m client.Message) bool { return m.Text == "psst" })
			s.Require().Equal(expected, seen, "visibility for %s", user)
		}
	})
}

func (s *testChatSuite) TestIdleParticipantIsEvicted() {
	if !s.InProcess {
		s.T().Skip("eviction timing is only controlled for the in-process server")
	}
	alice, ghost := s.UniqueName("alice"), s.UniqueName("ghost")

	s.Step("Ghost stops sending heartbeats", func(ctx context.Context) {
		s.Require().NoError(s.Client.Register(ctx, alice))
		s.Require().NoError(s.Client.Register(ctx, ghost))

		s.Eventually(func() bool {
			_ = s.Client.Heartbeat(ctx, alice)
			participants, err := s.Client.Participants(ctx)
			if err != nil {
				return false
			}
			return !lo.ContainsBy(participants, func(p client.Participant) bool { return p.Name == ghost })
		}, 5*s.Config.IdleThreshold, s.Config.IdleThreshold/4, "ghost should be evicted")

		messages, err := s.Client.Messages(ctx, alice, 0)
		s.Require().NoError(err)
		s.Require().True(lo.ContainsBy(messages, func(m client.Message) bool {
			return m.From == ghost && m.Text == domain.LeaveText
		}), "leave status message should be visible")

		participants, err := s.Client.Participants(ctx)
		s.Require().NoError(err)
		s.Require().True(lo.ContainsBy(participants, func(p client.Participant) bool { return p.Name == alice }))
	})
}
