package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"learncoach/internal/coach"
	"learncoach/internal/domain"
	"learncoach/internal/validation"
)

// handleChat runs one complete coaching turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		s.writeErr(ctx, w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req domain.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeStoreErr(ctx, w, err)
		return
	}
	if err := validation.UserInput(req.UserInput); err != nil {
		s.writeStoreErr(ctx, w, err)
		return
	}

	sess := s.sessions.GetOrCreate(req.SessionID)
	if req.SessionID == "" || len(sess.History()) == 0 {
		sess.SubmitInput(req.UserInput)
	}
	if req.Message != "" {
		sess.AppendUserMessage(req.Message)
	}
	if len(req.ConversationHistory) == 0 {
		req.ConversationHistory = sess.History()
	}

	resp, err := s.coach.Chat(ctx, req)
	if err != nil {
		s.writeChatErr(w, r, err)
		return
	}
	sess.ApplyAITurn(resp)
	resp.SessionID = sess.ID()

	if s.metrics != nil {
		s.metrics.RecordChatTurn()
		s.metrics.RecordExtraction(len(resp.Recommendations))
	}
	if s.settings.Get(ctx).AutoSave {
		if _, err := sess.Persist(ctx, s.conversations); err != nil {
			s.logger.WarnContext(ctx, "auto-save failed", appendRequestID(ctx, []any{"error", err.Error()})...)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChatStream runs a coaching turn over SSE. Deltas arrive as "delta"
// events; the final "result" event carries the full message and the
// recommendation batch.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		s.writeErr(ctx, w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req domain.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeStoreErr(ctx, w, err)
		return
	}
	if err := validation.UserInput(req.UserInput); err != nil {
		s.writeStoreErr(ctx, w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeErr(ctx, w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	sess := s.sessions.GetOrCreate(req.SessionID)
	if req.SessionID == "" || len(sess.History()) == 0 {
		sess.SubmitInput(req.UserInput)
	}
	if req.Message != "" {
		sess.AppendUserMessage(req.Message)
	}
	if len(req.ConversationHistory) == 0 {
		req.ConversationHistory = sess.History()
	}

	events, err := s.coach.StreamChat(ctx, req)
	if err != nil {
		s.writeChatErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for evt := range events {
		switch {
		case evt.Err != nil:
			writeSSE(w, "error", map[string]string{"error": evt.Err.Error()})
			flusher.Flush()
			return
		case evt.Response != nil:
			sess.ApplyAITurn(evt.Response)
			evt.Response.SessionID = sess.ID()
			if s.metrics != nil {
				s.metrics.RecordChatTurn()
				s.metrics.RecordExtraction(len(evt.Response.Recommendations))
			}
			if s.settings.Get(ctx).AutoSave {
				if _, err := sess.Persist(ctx, s.conversations); err != nil {
					s.logger.WarnContext(ctx, "auto-save failed", appendRequestID(ctx, []any{"error", err.Error()})...)
				}
			}
			writeSSE(w, "result", evt.Response)
			flusher.Flush()
		default:
			writeSSE(w, "delta", map[string]string{"content": evt.Delta})
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
}

func (s *Server) writeChatErr(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, coach.ErrProviderUnavailable):
		s.writeErr(ctx, w, http.StatusServiceUnavailable, "ai provider not configured", "")
	case errors.Is(err, coach.ErrEmptyResponse):
		s.writeErr(ctx, w, http.StatusBadGateway, "empty response from ai provider", "")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away; nothing useful to write.
	default:
		s.writeErr(ctx, w, http.StatusBadGateway, "ai request failed", err.Error())
	}
}
