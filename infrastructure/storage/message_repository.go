package storage

import (
	"chat-poll/contract"
	"chat-poll/domain"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

var _ contract.IMessageRepository = (*MessageRepository)(nil)

// MessageRepository is the append-only message log.
// Keys are "msg:{seq}" with the sequence zero padded to 20 digits,
// so lexicographical key order is insertion order.
type MessageRepository struct {
	store *Store
	log   *slog.Logger
}

func NewMessageRepository(store *Store, log *slog.Logger) *MessageRepository {
	return &MessageRepository{store: store, log: log}
}

// Append persists the message at the end of the log and returns it with its assigned Seq.
func (m *MessageRepository) Append(message domain.Message) (domain.Message, error) {
	var stored diskMessage
	err := m.store.update(func(txn *badger.Txn) error {
		var err error
		stored, err = m.store.appendMessage(txn, fromDomainMessage(message))
		return err
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toDomainMessage(stored)
}

// All returns the full log in insertion order.
func (m *MessageRepository) All() ([]domain.Message, error) {
	var messages []domain.Message
	err := m.store.view(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			message, err := readMessage(it.Item())
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Latest walks the log backwards from the most recent message.
// It stops as soon as limit accepted messages are collected, so a bounded
// query never decodes more of the log than it needs.
func (m *MessageRepository) Latest(accept func(domain.Message) bool, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.store.view(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Position after the greatest possible message key, then walk back
		seekKey := append([]byte(messagePrefix), reverseSeekSentinel)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", limit))
				break
			}
			message, err := readMessage(it.Item())
			if err != nil {
				return err
			}
			if accept == nil || accept(message) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func readMessage(item *badger.Item) (domain.Message, error) {
	var stored diskMessage
	err := item.Value(func(value []byte) error {
		return decode(value, &stored)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("message %s: %w", item.Key(), err)
	}
	return toDomainMessage(stored)
}
