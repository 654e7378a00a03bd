package api

import (
	"fmt"
	"net/http"

	"learncoach/internal/domain"
	"learncoach/internal/storage"
)

var validLanguages = map[string]bool{"ko": true, "en": true}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.settings.Get(ctx))

	case http.MethodPut:
		var req domain.Settings
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		if req.PreferredLanguage != "" && !validLanguages[req.PreferredLanguage] {
			s.writeStoreErr(ctx, w, fmt.Errorf("%w: unsupported language %q", storage.ErrValidation, req.PreferredLanguage))
			return
		}
		if req.PreferredLanguage == "" {
			req.PreferredLanguage = domain.DefaultSettings().PreferredLanguage
		}
		if err := s.settings.Update(ctx, req); err != nil {
			s.writeStoreErr(ctx, w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)

	default:
		s.writeErr(ctx, w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		s.writeErr(ctx, w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, s.conversations.Stats())
}
