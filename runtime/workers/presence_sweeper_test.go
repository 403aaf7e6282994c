package workers

import (
	"chat-poll/domain"
	"chat-poll/errors"
	"chat-poll/mocks"
	"chat-poll/observability"
	"context"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var sweepTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPresenceSweeper_SweepOnce_Returns_Evicted(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	metrics := observability.NewMetrics()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given two stale participants at sweep time
	participants.EXPECT().
		EvictStale(sweepTime, 10*time.Second).
		Return([]string{"bob", "carol"}, nil)

	w := NewPresenceSweeperWorker(log, participants, domain.FixedClock{At: sweepTime}, metrics, time.Second, 10*time.Second)

	// When sweeping once
	evicted, err := w.SweepOnce(context.Background())

	// Then both are reported and counted
	req.NoError(err)
	req.Equal([]string{"bob", "carol"}, evicted)
	req.Equal(2.0, testutil.ToFloat64(metrics.Evictions()))
}

func TestPresenceSweeper_SweepOnce_Canceled_Context(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewPresenceSweeperWorker(slog.Default(), participants, domain.FixedClock{At: sweepTime}, nil, time.Second, 10*time.Second)
	_, err := w.SweepOnce(ctx)
	req.ErrorIs(err, context.Canceled)
}

func TestPresenceSweeper_Run_Resumes_After_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Given a store failing on the first tick and recovering on the second
	gomock.InOrder(
		participants.EXPECT().
			EvictStale(gomock.Any(), 10*time.Second).
			Return(nil, errors.ErrStoreUnavailable),
		participants.EXPECT().
			EvictStale(gomock.Any(), 10*time.Second).
			DoAndReturn(func(time.Time, time.Duration) ([]string, error) {
				cancel()
				return []string{"bob"}, nil
			}),
	)

	w := NewPresenceSweeperWorker(slog.Default(), participants, domain.FixedClock{At: sweepTime}, metrics, 10*time.Millisecond, 10*time.Second)

	// When running until the second sweep cancels the context
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Then the worker kept going after the failure and stopped on cancel
	select {
	case err := <-done:
		req.True(stderrors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		req.Fail("presence sweeper did not stop")
	}
	req.Equal(1.0, testutil.ToFloat64(metrics.SweepFailures()))
	req.Equal(1.0, testutil.ToFloat64(metrics.Evictions()))
}

func TestPresenceSweeper_Run_Stops_On_Cancel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	participants.EXPECT().EvictStale(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	w := NewPresenceSweeperWorker(slog.Default(), participants, domain.SystemClock{}, nil, 5*time.Millisecond, 10*time.Second)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("presence sweeper did not stop")
	}
}
