// internal/circulation/handler.go
package circulation

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MembershipID string `json:"membership_id"`
		BookTitle    string `json:"book_title"`
		BookAuthor   string `json:"book_author"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fee, err := h.service.ProcessReturn(r.Context(), req.MembershipID, req.BookTitle, req.BookAuthor)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidReturn):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrLoanNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	resp := map[string]any{"status": "returned"}
	if fee != nil {
		resp["fee"] = fee
	}
	json.NewEncoder(w).Encode(resp)
}
