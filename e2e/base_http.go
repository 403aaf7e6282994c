package e2e

import (
	"chat-poll/domain"
	"chat-poll/infrastructure/http/client"
	"chat-poll/infrastructure/http/server"
	"chat-poll/infrastructure/storage"
	"chat-poll/observability"
	"chat-poll/runtime"
	"chat-poll/runtime/workers"
	"chat-poll/services"
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config    Config
	Client    *client.ChatClient
	InProcess bool

	dir          string
	db           *badger.DB
	store        *storage.Store
	httpServer   *httptest.Server
	orchestrator *runtime.Orchestrator
	stopped      chan struct{}
}

// SetupSuite loads the environment configuration and, without CHAT_ADDR,
// boots a complete server on a temporary badger directory.
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	addr := s.Config.ChatAddr
	if addr == "" {
		addr = s.startInProcess()
		s.InProcess = true
	}
	s.Client = client.NewChatClient(addr, 5*time.Second)
}

func (s *BaseHTTPSuite) TearDownSuite() {
	if !s.InProcess {
		return
	}
	s.httpServer.Close()
	s.orchestrator.Stop()
	<-s.stopped
	_ = s.store.Close()
	_ = s.db.Close()
	_ = os.RemoveAll(s.dir)
}

func (s *BaseHTTPSuite) startInProcess() string {
	var err error
	s.dir, err = os.MkdirTemp("", "chat-poll-e2e-*")
	s.Require().NoError(err)

	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	s.db, err = badger.Open(badger.DefaultOptions(s.dir).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.store, err = storage.NewStore(s.db, log)
	s.Require().NoError(err)

	clock := domain.SystemClock{}
	metrics := observability.NewMetrics()
	participants := storage.NewParticipantRepository(s.store, log)
	messages := storage.NewMessageRepository(s.store, log)

	sweeper := workers.NewPresenceSweeperWorker(log, participants, clock, metrics,
		s.Config.IdleThreshold/3, s.Config.IdleThreshold)
	s.orchestrator = runtime.NewOrchestrator(log, workers.NewSupervisor(log, 50*time.Millisecond), sweeper)
	s.stopped = make(chan struct{})
	go func() {
		defer close(s.stopped)
		_ = s.orchestrator.Start(context.Background())
	}()

	service := services.NewChatService(log, clock, participants, messages)
	s.httpServer = httptest.NewServer(server.NewChatServer(log, service, metrics, server.Options{
		AllowedOrigins: []string{"*"},
	}).Handler())
	return s.httpServer.URL
}

// Step prints a colorized header then runs fn with a bounded context.
func (s *BaseHTTPSuite) Step(name string, fn func(ctx context.Context)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	fn(ctx)
}

// UniqueName avoids collisions with participants of a shared server.
func (s *BaseHTTPSuite) UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
