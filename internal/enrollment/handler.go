// internal/enrollment/handler.go
package enrollment

import (
	"encoding/json"
	"errors"
	"net/http"

	"bureaudesk/internal/catalog"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	var citizen catalog.Citizen
	if err := json.NewDecoder(r.Body).Decode(&citizen); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := h.service.Enroll(r.Context(), citizen)
	if !ok {
		switch {
		case errors.Is(err, catalog.ErrAlreadyEnrolled):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrRateLimited):
			http.Error(w, err.Error(), http.StatusTooManyRequests)
		case errors.Is(err, ErrInvalidCitizen):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			// Gateway failures are the office's problem, not the citizen's.
			http.Error(w, "enrollment failed", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "enrolled"})
}
