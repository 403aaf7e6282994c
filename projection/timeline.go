// Package projection builds the read side of the chat: which messages a
// participant may see, in which order, and how many.
// Does not write to the log or talk to the transport.
package projection

import (
	"chat-poll/contract"
	"chat-poll/domain"
	"chat-poll/errors"
	"fmt"
	"strconv"
)

// Timeline answers message queries on behalf of one requesting participant.
type Timeline struct {
	messages contract.IMessageRepository
}

func NewTimeline(messages contract.IMessageRepository) *Timeline {
	return &Timeline{messages: messages}
}

// Visible tells whether requester may read message.
// Broadcast chat and status events are public; private messages are
// only shown to their sender and recipient.
func Visible(requester string, message domain.Message) bool {
	return message.From == requester ||
		message.To == requester ||
		message.Kind == domain.ChatKind ||
		message.Kind == domain.StatusKind
}

// ParseLimit validates the optional page size.
// Absent means unbounded (0). Present but not a positive integer is rejected.
func ParseLimit(raw string, present bool) (int, error) {
	if !present {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer, got %q", errors.ErrInvalidArgument, raw)
	}
	return limit, nil
}

// Messages returns the messages visible to requester, most recent first,
// at most limit of them when limit > 0.
func (t *Timeline) Messages(requester string, limit int) ([]domain.Message, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer, got %d", errors.ErrInvalidArgument, limit)
	}
	return t.messages.Latest(func(message domain.Message) bool {
		return Visible(requester, message)
	}, limit)
}
