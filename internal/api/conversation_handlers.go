package api

import (
	"net/http"
	"strings"

	"learncoach/internal/domain"
	"learncoach/internal/export"
	"learncoach/internal/storage"
	"learncoach/internal/validation"
)

const conversationsPrefix = "/api/v1/conversations/"

// handleConversations serves the collection: list/search, save, clear.
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query().Get("q")
		var items []domain.ConversationRecord
		if strings.TrimSpace(query) != "" {
			items = s.conversations.Search(query)
		} else {
			items = s.conversations.List(storage.SortOrder(r.URL.Query().Get("sort")))
		}
		writeJSON(w, http.StatusOK, domain.ConversationsListResponse{Items: items, Total: len(items)})

	case http.MethodPost:
		var req domain.SaveConversationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		if err := validation.UserInput(req.UserInput); err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		id, err := s.conversations.Save(ctx, req.UserInput, req.Messages, req.Recommendations)
		if err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordConversationWrite()
		}
		rec, err := s.conversations.Get(ctx, id)
		if err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)

	case http.MethodDelete:
		if err := s.conversations.Clear(ctx); err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		s.writeErr(ctx, w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

// handleConversationSubroutes dispatches /api/v1/conversations/{id} and its
// /report and /email subroutes.
func (s *Server) handleConversationSubroutes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rest := strings.TrimPrefix(r.URL.Path, conversationsPrefix)
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		s.writeErr(ctx, w, http.StatusBadRequest, "missing conversation id", "")
		return
	}

	if len(parts) == 1 {
		s.handleConversationByID(w, r, id)
		return
	}
	switch parts[1] {
	case "report":
		s.handleConversationReport(w, r, id)
	case "email":
		s.handleConversationEmail(w, r, id)
	default:
		s.writeErr(ctx, w, http.StatusNotFound, "not found", "")
	}
}

func (s *Server) handleConversationByID(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		rec, err := s.conversations.Get(ctx, id)
		if err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case http.MethodPut:
		var req domain.UpdateConversationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		if err := s.conversations.Update(ctx, id, req.Messages, req.Recommendations); err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordConversationWrite()
		}
		// Update on an unknown id is a no-op; report whatever is stored.
		if rec, err := s.conversations.Get(ctx, id); err == nil {
			writeJSON(w, http.StatusOK, rec)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if err := s.conversations.Delete(ctx, id); err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		s.writeErr(ctx, w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

func (s *Server) handleConversationReport(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		s.writeErr(ctx, w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	rec, err := s.conversations.Get(ctx, id)
	if err != nil {
		s.writeStoreErr(ctx, w, err)
		return
	}
	html, err := export.RenderReport(rec, r.URL.Query().Get("title"))
	if err != nil {
		s.writeErr(ctx, w, http.StatusInternalServerError, "report rendering failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

type emailReportRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
}

func (s *Server) handleConversationEmail(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		s.writeErr(ctx, w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	if s.dispatcher == nil {
		s.writeErr(ctx, w, http.StatusServiceUnavailable, "email dispatch not configured", "")
		return
	}

	var req emailReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeStoreErr(ctx, w, err)
		return
	}
	if err := validation.Email(req.To); err != nil {
		s.writeStoreErr(ctx, w, err)
		return
	}

	rec, err := s.conversations.Get(ctx, id)
	if err != nil {
		s.writeStoreErr(ctx, w, err)
		return
	}
	html, err := export.RenderReport(rec, "")
	if err != nil {
		s.writeErr(ctx, w, http.StatusInternalServerError, "report rendering failed", err.Error())
		return
	}

	subject := req.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "학습 상담 보고서: " + rec.Title
	}
	if err := s.dispatcher.Send(ctx, req.To, subject, html); err != nil {
		s.writeErr(ctx, w, http.StatusBadGateway, "email dispatch failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent", "to": req.To})
}
