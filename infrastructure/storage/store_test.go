package storage

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *ParticipantRepository, *MessageRepository) {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)

	store, err := NewStore(db, slog.Default())
	req.NoError(err)
	t.Cleanup(func() {
		_ = store.Close()
		_ = db.Close()
	})
	return store, NewParticipantRepository(store, slog.Default()), NewMessageRepository(store, slog.Default())
}

func TestStore_Reopen_Keeps_Sequence_Monotonic(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	open := func() (*badger.DB, *Store) {
		db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
		req.NoError(err)
		store, err := NewStore(db, slog.Default())
		req.NoError(err)
		return db, store
	}

	// Given a log written by a first process
	db, store := open()
	first, err := NewMessageRepository(store, slog.Default()).Append(chat("alice", "all", "one"))
	req.NoError(err)
	req.NoError(store.Close())
	req.NoError(db.Close())

	// When the store is reopened and a message appended
	db, store = open()
	defer db.Close()
	defer store.Close()
	repository := NewMessageRepository(store, slog.Default())
	second, err := repository.Append(chat("alice", "all", "two"))
	req.NoError(err)

	// Then the new message sorts after the old one
	req.Greater(second.Seq, first.Seq)
	all, err := repository.All()
	req.NoError(err)
	req.Len(all, 2)
	req.Equal("one", all[0].Text)
	req.Equal("two", all[1].Text)
}
