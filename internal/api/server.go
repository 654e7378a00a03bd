// Package api exposes the coaching service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"

	"learncoach/internal/coach"
	"learncoach/internal/export"
	"learncoach/internal/observability"
	"learncoach/internal/session"
	"learncoach/internal/storage"
)

type apiError struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Server routes HTTP requests to the conversation store, the coaching
// service, and the export pipeline.
type Server struct {
	mux           *http.ServeMux
	conversations *storage.ConversationStore
	settings      *storage.SettingsStore
	coach         *coach.Service
	sessions      *session.Manager
	dispatcher    export.Dispatcher
	logger        observability.Logger
	metrics       *observability.Metrics
}

// NewServer creates the HTTP server with its dependencies. If logger is nil a
// default logger is used; nil metrics disables collection; nil dispatcher
// disables email export.
func NewServer(
	mux *http.ServeMux,
	conversations *storage.ConversationStore,
	settings *storage.SettingsStore,
	coachSvc *coach.Service,
	sessions *session.Manager,
	dispatcher export.Dispatcher,
	logger observability.Logger,
	metrics *observability.Metrics,
) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.DefaultConfig())
	}
	return &Server{
		mux:           mux,
		conversations: conversations,
		settings:      settings,
		coach:         coachSvc,
		sessions:      sessions,
		dispatcher:    dispatcher,
		logger:        logger,
		metrics:       metrics,
	}
}

// RegisterRoutes wires all HTTP routes onto the mux.
func (s *Server) RegisterRoutes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/readyz", s.handleReady)
	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}

	s.mux.HandleFunc("/api/v1/chat", s.handleChat)
	s.mux.HandleFunc("/api/v1/chat/stream", s.handleChatStream)
	s.mux.HandleFunc("/api/v1/conversations", s.handleConversations)
	s.mux.HandleFunc("/api/v1/conversations/", s.handleConversationSubroutes)
	s.mux.HandleFunc("/api/v1/settings", s.handleSettings)
	s.mux.HandleFunc("/api/v1/stats", s.handleStats)
}

func (s *Server) writeErr(ctx context.Context, w http.ResponseWriter, code int, msg string, detail string) {
	fields := []any{
		"status", code,
		"error", msg,
	}
	if detail != "" {
		fields = append(fields, "detail", detail)
	}
	fields = appendRequestID(ctx, fields)
	if code >= 500 {
		s.logger.ErrorContext(ctx, "request failed", fields...)
		sentry.CaptureMessage(fmt.Sprintf("HTTP %d: %s (detail: %s)", code, msg, detail))
	} else {
		s.logger.WarnContext(ctx, "request failed", fields...)
	}
	writeJSON(w, code, apiError{Error: msg, Detail: detail})
}

// writeStoreErr maps a storage-layer error to the appropriate HTTP status
// code via errors.Is, falling back to 500 for unknown errors.
func (s *Server) writeStoreErr(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.writeErr(ctx, w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, storage.ErrValidation):
		s.writeErr(ctx, w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, storage.ErrUnavailable):
		s.writeErr(ctx, w, http.StatusServiceUnavailable, "storage unavailable", err.Error())
	default:
		s.writeErr(ctx, w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// decodeJSON reads and decodes a JSON request body with a sane size cap.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", storage.ErrValidation)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) { s.status = code; s.ResponseWriter.WriteHeader(code) }

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
