package storage

import (
	"chat-poll/contract"
	"chat-poll/domain"
	"chat-poll/errors"
	stderrors "errors"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var _ contract.IParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository is the registry of active participants.
// It shares its Store with the message log so that join and leave events are
// written in the same transaction as the registry change they describe.
type ParticipantRepository struct {
	store *Store
	log   *slog.Logger
}

func NewParticipantRepository(store *Store, log *slog.Logger) *ParticipantRepository {
	return &ParticipantRepository{store: store, log: log}
}

// Register creates the participant and appends its join status message.
// Names are exact, case-sensitive keys.
func (p *ParticipantRepository) Register(name string, now time.Time) error {
	return p.store.update(func(txn *badger.Txn) error {
		key := participantKey(name)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrParticipantAlreadyExists
		} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		order, err := p.store.participantSeq.Next()
		if err != nil {
			return err
		}
		data, err := encode(diskParticipant{Name: name, LastSeen: now.UnixNano(), Order: order})
		if err != nil {
			return err
		}
		if err = txn.Set(key, data); err != nil {
			return err
		}
		_, err = p.store.appendMessage(txn, fromDomainMessage(domain.NewJoinMessage(name, now)))
		return err
	})
}

// Heartbeat refreshes LastSeen for an existing participant.
func (p *ParticipantRepository) Heartbeat(name string, now time.Time) error {
	return p.store.update(func(txn *badger.Txn) error {
		participant, err := getParticipant(txn, name)
		if err != nil {
			return err
		}
		participant.LastSeen = now.UnixNano()
		data, err := encode(participant)
		if err != nil {
			return err
		}
		return txn.Set(participantKey(name), data)
	})
}

func (p *ParticipantRepository) Exists(name string) (bool, error) {
	err := p.store.view(func(txn *badger.Txn) error {
		_, err := getParticipant(txn, name)
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, errors.ErrParticipantNotFound):
		return false, nil
	default:
		return false, err
	}
}

// List returns every participant in registration order.
func (p *ParticipantRepository) List() ([]domain.Participant, error) {
	var stored []diskParticipant
	err := p.store.view(func(txn *badger.Txn) error {
		var err error
		stored, err = scanParticipants(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	participants := make([]domain.Participant, 0, len(stored))
	for _, participant := range stored {
		participants = append(participants, toDomainParticipant(participant))
	}
	return participants, nil
}

// EvictStale removes every participant silent for strictly longer than idle and
// appends one leave status message per evicted name, all in one transaction.
// The writer lock is held for the whole scan, so a concurrent heartbeat lands
// either before the scan (and is honoured) or after it.
func (p *ParticipantRepository) EvictStale(now time.Time, idle time.Duration) ([]string, error) {
	var evicted []string
	err := p.store.update(func(txn *badger.Txn) error {
		evicted = nil
		participants, err := scanParticipants(txn)
		if err != nil {
			return err
		}
		for _, participant := range participants {
			if !toDomainParticipant(participant).IsStale(now, idle) {
				continue
			}
			if err = txn.Delete(participantKey(participant.Name)); err != nil {
				return err
			}
			leave := domain.NewLeaveMessage(participant.Name, now)
			if _, err = p.store.appendMessage(txn, fromDomainMessage(leave)); err != nil {
				return err
			}
			evicted = append(evicted, participant.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return evicted, nil
}

func getParticipant(txn *badger.Txn, name string) (diskParticipant, error) {
	var participant diskParticipant
	item, err := txn.Get(participantKey(name))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return participant, errors.ErrParticipantNotFound
	}
	if err != nil {
		return participant, err
	}
	err = item.Value(func(value []byte) error {
		return decode(value, &participant)
	})
	return participant, err
}

// scanParticipants reads the whole registry sorted by registration order.
// The iterator is closed before returning so callers may write in the same txn.
func scanParticipants(txn *badger.Txn) ([]diskParticipant, error) {
	var participants []diskParticipant
	prefix := []byte(participantPrefix)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var participant diskParticipant
		err := it.Item().Value(func(value []byte) error {
			return decode(value, &participant)
		})
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Order < participants[j].Order
	})
	return participants, nil
}
