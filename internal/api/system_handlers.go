package api

import "net/http"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

// ReadinessResponse represents the JSON response for the readiness check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleReady verifies that dependencies are usable. Unlike /healthz it
// returns 503 when storage or the AI provider is down.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErr(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	ctx := r.Context()
	checks := make(map[string]string)
	status := "ok"
	code := http.StatusOK

	if err := s.conversations.Ping(ctx); err != nil {
		checks["storage"] = "error"
		status = "unhealthy"
		code = http.StatusServiceUnavailable
		s.logger.ErrorContext(ctx, "readiness check failed", appendRequestID(ctx, []any{
			"check", "storage",
			"error", err.Error(),
		})...)
	} else {
		checks["storage"] = "ok"
	}

	if s.coach != nil && s.coach.Available() {
		checks["ai_provider"] = "ok"
	} else {
		checks["ai_provider"] = "unconfigured"
	}

	writeJSON(w, code, ReadinessResponse{Status: status, Checks: checks})
}
