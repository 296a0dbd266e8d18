package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/agency-service/internal/models"
	"github.com/rentdesk/agency-service/internal/service"
)

type registerPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

// RegisterPayment handles payment registration against an obligation
func (h *Handler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	obligationID, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid obligation id"})
		return
	}
	var req registerPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: expected YYYY-MM-DD"})
		return
	}

	payment, err := h.svc.RegisterPayment(r.Context(), service.RegisterPaymentParams{
		ObligationID: obligationID,
		Amount:       req.Amount,
		Date:         date,
		Method:       models.PaymentMethod(req.Method),
		Reference:    req.Reference,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, payment)
}

// ListPayments handles payment history lookup for an obligation
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	obligationID, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid obligation id"})
		return
	}
	payments, err := h.svc.ListPayments(r.Context(), obligationID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, payments)
}

// ReversePayment handles appending an offsetting reversal for a payment
func (h *Handler) ReversePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment id"})
		return
	}
	reversal, err := h.svc.ReversePayment(r.Context(), paymentID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, reversal)
}
