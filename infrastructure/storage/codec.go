package storage

import (
	"chat-poll/domain"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type diskParticipant struct {
	Name     string `cbor:"1,keyasint"`
	LastSeen int64  `cbor:"2,keyasint"`
	Order    uint64 `cbor:"3,keyasint"`
}

type diskMessage struct {
	ID   string `cbor:"1,keyasint"`
	Seq  uint64 `cbor:"2,keyasint"`
	From string `cbor:"3,keyasint"`
	To   string `cbor:"4,keyasint"`
	Text string `cbor:"5,keyasint"`
	Kind string `cbor:"6,keyasint"`
	At   int64  `cbor:"7,keyasint"`
}

func encode(v any) ([]byte, error) {
	data, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

func decode(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func fromDomainMessage(message domain.Message) diskMessage {
	id := message.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return diskMessage{
		ID:   id.String(),
		Seq:  message.Seq,
		From: message.From,
		To:   message.To,
		Text: message.Text,
		Kind: string(message.Kind),
		At:   message.Time.UnixNano(),
	}
}

func toDomainMessage(message diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(message.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:   parsedID,
		Seq:  message.Seq,
		From: message.From,
		To:   message.To,
		Text: message.Text,
		Kind: domain.MessageKind(message.Kind),
		Time: time.Unix(0, message.At).UTC(),
	}, nil
}

func toDomainParticipant(participant diskParticipant) domain.Participant {
	return domain.Participant{
		Name:     participant.Name,
		LastSeen: time.Unix(0, participant.LastSeen).UTC(),
	}
}
