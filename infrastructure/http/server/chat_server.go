package server

import (
	"chat-poll/domain"
	"chat-poll/errors"
	"chat-poll/observability"
	"chat-poll/services"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

const (
	userHeader   = "User"
	maxBodyBytes = 64 << 10
)

// Options tunes the middleware chain wrapped around the routes.
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type ChatServer struct {
	log         *slog.Logger
	chatService services.IChatService
	metrics     *observability.Metrics
	options     Options
}

func NewChatServer(log *slog.Logger, chatService services.IChatService,
	metrics *observability.Metrics, options Options) *ChatServer {
	return &ChatServer{
		log:         log,
		chatService: chatService,
		metrics:     metrics,
		options:     options,
	}
}

// Handler builds the router. CORS sits outside the router so that preflight
// requests are answered even though no route declares OPTIONS.
func (s *ChatServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/participants", s.register).Methods(http.MethodPost)
	r.HandleFunc("/participants", s.participants).Methods(http.MethodGet)
	r.HandleFunc("/messages", s.postMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages", s.getMessages).Methods(http.MethodGet)
	r.HandleFunc("/status", s.status).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
		r.Use(metricsMiddleware(s.metrics))
	}

	var handler http.Handler = r
	handler = rateLimitMiddleware(s.options.RateLimitRPS, s.options.RateLimitBurst)(handler)
	handler = corsMiddleware(s.options.AllowedOrigins)(handler)
	return handler
}

func (s *ChatServer) register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.chatService.Register(r.Context(), domain.RegisterCommand{Name: body.Name}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, registerRequest{Name: strings.TrimSpace(body.Name)})
}

func (s *ChatServer) participants(w http.ResponseWriter, r *http.Request) {
	participants, err := s.chatService.Participants(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toParticipantResponses(participants))
}

func (s *ChatServer) postMessage(w http.ResponseWriter, r *http.Request) {
	var body postMessageRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	message, err := s.chatService.PostMessage(r.Context(), domain.PostMessageCommand{
		From: r.Header.Get(userHeader),
		To:   body.To,
		Text: body.Text,
		Kind: domain.MessageKind(body.Type),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toMessageResponse(message))
}

func (s *ChatServer) getMessages(w http.ResponseWriter, r *http.Request) {
	limit, hasLimit := r.URL.Query()["limit"]
	cmd := domain.GetMessagesCommand{
		User:     r.Header.Get(userHeader),
		HasLimit: hasLimit,
	}
	if hasLimit {
		cmd.Limit = limit[0]
	}
	messages, err := s.chatService.GetMessages(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

func (s *ChatServer) status(w http.ResponseWriter, r *http.Request) {
	if err := s.chatService.Heartbeat(r.Context(), r.Header.Get(userHeader)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *ChatServer) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads a bounded JSON body. Malformed input is a validation error.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json: %v", errors.ErrValidation, err)
	}
	return nil
}

func (s *ChatServer) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("Response write failed", "error", err)
	}
}

func (s *ChatServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.MapToHTTPStatus(err)
	if errors.IsExpected(err) {
		s.log.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "code", code, "error", err)
		s.writeJSON(w, code, errorResponse{Error: err.Error()})
		return
	}
	s.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	s.writeJSON(w, code, errorResponse{Error: http.StatusText(code)})
}
