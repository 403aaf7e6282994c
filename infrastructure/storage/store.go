package storage

import (
	"chat-poll/errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const (
	messagePrefix       = "msg:"
	participantPrefix   = "participant:"
	messageSeqKey       = "seq:msg"
	participantSeqKey   = "seq:participant"
	sequenceBandwidth   = 100
	reverseSeekSentinel = 0xFF
)

// Store owns the badger handle shared by the participant registry and the message log.
// Every write transaction goes through update, which holds a single writer lock:
// registry mutations are serialized and message sequence numbers are committed in order.
type Store struct {
	db             *badger.DB
	log            *slog.Logger
	mu             sync.Mutex
	messageSeq     *badger.Sequence
	participantSeq *badger.Sequence
}

func NewStore(db *badger.DB, log *slog.Logger) (*Store, error) {
	messageSeq, err := db.GetSequence([]byte(messageSeqKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	participantSeq, err := db.GetSequence([]byte(participantSeqKey), sequenceBandwidth)
	if err != nil {
		_ = messageSeq.Release()
		return nil, fmt.Errorf("participant sequence: %w", err)
	}
	return &Store{
		db:             db,
		log:            log,
		messageSeq:     messageSeq,
		participantSeq: participantSeq,
	}, nil
}

// Close releases the leased sequence ranges. The badger DB itself is closed by its owner.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	errMsg := s.messageSeq.Release()
	errParticipant := s.participantSeq.Release()
	if errMsg != nil {
		return errMsg
	}
	return errParticipant
}

// update runs fn in a read-write transaction while holding the writer lock.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return wrapStoreError(s.db.Update(fn))
}

func (s *Store) view(fn func(txn *badger.Txn) error) error {
	return wrapStoreError(s.db.View(fn))
}

// appendMessage assigns the next sequence number to message and writes it in txn.
// Must be called from inside update.
func (s *Store) appendMessage(txn *badger.Txn, message diskMessage) (diskMessage, error) {
	seq, err := s.messageSeq.Next()
	if err != nil {
		return diskMessage{}, err
	}
	// Sequences start at 0, the log starts at 1.
	message.Seq = seq + 1
	data, err := encode(message)
	if err != nil {
		return diskMessage{}, err
	}
	if err = txn.Set(messageKey(message.Seq), data); err != nil {
		return diskMessage{}, err
	}
	return message, nil
}

func messageKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", messagePrefix, seq))
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// wrapStoreError keeps expected domain outcomes untouched and tags everything else
// as a storage failure.
func wrapStoreError(err error) error {
	if err == nil || errors.IsExpected(err) {
		return err
	}
	return fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
}
