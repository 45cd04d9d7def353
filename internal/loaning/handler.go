// internal/loaning/handler.go
package loaning

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleLoanRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CitizenID  string `json:"citizen_id"`
		BookTitle  string `json:"book_title"`
		BookAuthor string `json:"book_author"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SubmitLoanRequest(r.Context(), req.CitizenID, req.BookTitle, req.BookAuthor); err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
}

func (h *Handler) HandlePauseCounter(w http.ResponseWriter, r *http.Request) {
	h.handleCounterState(w, r, h.service.PauseCounter)
}

func (h *Handler) HandleResumeCounter(w http.ResponseWriter, r *http.Request) {
	h.handleCounterState(w, r, h.service.ResumeCounter)
}

func (h *Handler) handleCounterState(w http.ResponseWriter, r *http.Request, op func(int) error) {
	id, err := strconv.Atoi(chi.URLParam(r, "counterID"))
	if err != nil {
		http.Error(w, "invalid counter ID", http.StatusBadRequest)
		return
	}

	if err := op(id); err != nil {
		if errors.Is(err, ErrCounterNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
