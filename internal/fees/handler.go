// internal/fees/handler.go
package fees

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleGetFee(w http.ResponseWriter, r *http.Request) {
	borrowID := chi.URLParam(r, "borrowID")

	fee, err := h.service.GetFeeByBorrowID(r.Context(), borrowID)
	if err != nil {
		if errors.Is(err, ErrFeeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(fee)
}

// HandleMarkAsPaid accepts the fee id as a plain-text body, matching the
// settlement endpoint of the office frontend.
func (h *Handler) HandleMarkAsPaid(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	feeID := strings.TrimSpace(string(body))
	if feeID == "" {
		http.Error(w, "fee id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.MarkFeeAsPaid(r.Context(), feeID); err != nil {
		if errors.Is(err, ErrFeeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) HandleAddFee(w http.ResponseWriter, r *http.Request) {
	var fee Fee
	if err := json.NewDecoder(r.Body).Decode(&fee); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.AddFee(r.Context(), &fee); err != nil {
		switch {
		case errors.Is(err, ErrInvalidFee):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrFeeAlreadyCharged):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(fee)
}

func (h *Handler) HandleUpdateFee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FeeID  string  `json:"fee_id"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateFeeAmount(r.Context(), req.FeeID, req.Amount); err != nil {
		switch {
		case errors.Is(err, ErrFeeNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrInvalidFee):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) HandleDeleteFee(w http.ResponseWriter, r *http.Request) {
	feeID := chi.URLParam(r, "feeID")
	if err := h.service.DeleteFee(r.Context(), feeID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
