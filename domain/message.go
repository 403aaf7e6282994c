// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once appended to the log.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is the reserved recipient addressing every participant.
const Broadcast = "all"

const (
	JoinText  = "entra na sala..."
	LeaveText = "sai da sala..."
)

type MessageKind string

const (
	ChatKind    MessageKind = "message"
	PrivateKind MessageKind = "private_message"
	StatusKind  MessageKind = "status"
)

// Message represents an immutable chat event.
// Seq is assigned by the log and is the only ordering guarantee.
type Message struct {
	ID   uuid.UUID
	Seq  uint64
	From string
	To   string
	Text string
	Kind MessageKind
	Time time.Time
}

func NewJoinMessage(name string, at time.Time) Message {
	return newStatusMessage(name, JoinText, at)
}

func NewLeaveMessage(name string, at time.Time) Message {
	return newStatusMessage(name, LeaveText, at)
}

func newStatusMessage(name, text string, at time.Time) Message {
	return Message{
		ID:   uuid.New(),
		From: name,
		To:   Broadcast,
		Text: text,
		Kind: StatusKind,
		Time: at,
	}
}
