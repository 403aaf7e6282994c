package services

import (
	"chat-poll/contract"
	"chat-poll/domain"
	"chat-poll/errors"
	"chat-poll/projection"
	"context"
	"fmt"
	"log/slog"
)

type IChatService interface {
	Register(ctx context.Context, cmd domain.RegisterCommand) error
	Participants(ctx context.Context) ([]domain.Participant, error)
	PostMessage(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error)
	GetMessages(ctx context.Context, cmd domain.GetMessagesCommand) ([]domain.Message, error)
	Heartbeat(ctx context.Context, user string) error
}

type ChatService struct {
	log          *slog.Logger
	clock        contract.IClock
	participants contract.IParticipantRepository
	messages     contract.IMessageRepository
	timeline     *projection.Timeline
}

func NewChatService(
	log *slog.Logger,
	clock contract.IClock,
	participants contract.IParticipantRepository,
	messages contract.IMessageRepository,
) *ChatService {
	return &ChatService{
		log:          log,
		clock:        clock,
		participants: participants,
		messages:     messages,
		timeline:     projection.NewTimeline(messages),
	}
}

// Register validates the name and adds the participant.
// The registry appends the join status message itself.
func (s *ChatService) Register(ctx context.Context, cmd domain.RegisterCommand) error {
	cmd.Name = normalizeName(cmd.Name)
	if err := ValidateRegister(cmd); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.participants.Register(cmd.Name, s.clock.Now()); err != nil {
		return err
	}
	s.log.Debug("Participant registered", "name", cmd.Name)
	return nil
}

func (s *ChatService) Participants(_ context.Context) ([]domain.Participant, error) {
	return s.participants.List()
}

// PostMessage appends a chat or private message on behalf of a registered sender.
// An unknown sender is a validation failure, not a missing resource.
func (s *ChatService) PostMessage(ctx context.Context, cmd domain.PostMessageCommand) (domain.Message, error) {
	if err := ValidatePostMessage(cmd); err != nil {
		return domain.Message{}, err
	}
	exists, err := s.participants.Exists(cmd.From)
	if err != nil {
		return domain.Message{}, err
	}
	if !exists {
		return domain.Message{}, fmt.Errorf("%w: unknown sender %q", errors.ErrValidation, cmd.From)
	}
	if err = ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	return s.messages.Append(domain.Message{
		From: cmd.From,
		To:   cmd.To,
		Text: cmd.Text,
		Kind: cmd.Kind,
		Time: s.clock.Now(),
	})
}

// GetMessages returns what cmd.User may read, newest first.
func (s *ChatService) GetMessages(_ context.Context, cmd domain.GetMessagesCommand) ([]domain.Message, error) {
	limit, err := projection.ParseLimit(cmd.Limit, cmd.HasLimit)
	if err != nil {
		return nil, err
	}
	if cmd.User == "" {
		return nil, fmt.Errorf("%w: user header is required", errors.ErrValidation)
	}
	return s.timeline.Messages(cmd.User, limit)
}

// Heartbeat refreshes the last seen time of user.
func (s *ChatService) Heartbeat(_ context.Context, user string) error {
	if user == "" {
		return fmt.Errorf("%w: user header is required", errors.ErrValidation)
	}
	return s.participants.Heartbeat(user, s.clock.Now())
}
