//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-poll/domain"
	"context"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type IClock interface {
	Now() time.Time
}

// IParticipantRepository is the participant registry.
// Register and EvictStale append their join/leave status messages to the log
// as part of the same write.
type IParticipantRepository interface {
	Register(name string, now time.Time) error
	Heartbeat(name string, now time.Time) error
	Exists(name string) (bool, error)
	List() ([]domain.Participant, error)
	EvictStale(now time.Time, idle time.Duration) ([]string, error)
}

// IMessageRepository is the append-only message log.
type IMessageRepository interface {
	Append(message domain.Message) (domain.Message, error)
	All() ([]domain.Message, error)
	// Latest walks the log from the newest message and returns at most limit
	// accepted messages, newest first. A limit <= 0 means no bound.
	Latest(accept func(domain.Message) bool, limit int) ([]domain.Message, error)
}
