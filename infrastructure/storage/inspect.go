package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	MessagePrefix     = messagePrefix
	ParticipantPrefix = participantPrefix
)

// Entry is a human readable view of one badger key/value pair.
type Entry struct {
	Key    string
	Type   string
	Time   string
	Owner  string
	Detail string
}

// DescribeEntry decodes a raw key/value pair written by the repositories.
// Unknown or undecodable values are reported as RAW with their size.
func DescribeEntry(key string, val []byte) Entry {
	entry := Entry{
		Key:    key,
		Type:   "RAW",
		Time:   "--:--:--",
		Owner:  "-",
		Detail: "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	switch {
	case strings.HasPrefix(key, messagePrefix):
		var message diskMessage
		if err := decode(val, &message); err != nil {
			return entry
		}
		entry.Type = strings.ToUpper(message.Kind)
		entry.Time = time.Unix(0, message.At).UTC().Format("15:04:05")
		entry.Owner = message.From
		entry.Detail = fmt.Sprintf("#%d to %s: %s", message.Seq, message.To, message.Text)
	case strings.HasPrefix(key, participantPrefix):
		var participant diskParticipant
		if err := decode(val, &participant); err != nil {
			return entry
		}
		entry.Type = "PARTICIPANT"
		entry.Time = time.Unix(0, participant.LastSeen).UTC().Format("15:04:05")
		entry.Owner = participant.Name
		entry.Detail = fmt.Sprintf("order %d", participant.Order)
	}
	return entry
}

// ScanEntries lists the entries under prefix in key order.
// A limit <= 0 means no bound. Works on a read-only handle.
func ScanEntries(db *badger.DB, prefix string, limit int) ([]Entry, error) {
	var entries []Entry
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			if limit > 0 && len(entries) >= limit {
				return nil
			}
			item := it.Item()
			key := string(item.KeyCopy(nil))
			err := item.Value(func(val []byte) error {
				entries = append(entries, DescribeEntry(key, val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return entries, nil
}
