package handler

import (
	"net/http"
	"strconv"

	"github.com/rentdesk/agency-service/internal/models"
)

type calculateSettlementRequest struct {
	OwnerID int64  `json:"owner_id"`
	Period  string `json:"period"` // YYYY-MM
}

// CalculateSettlement handles settlement calculation for an owner/period
func (h *Handler) CalculateSettlement(w http.ResponseWriter, r *http.Request) {
	var req calculateSettlementRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, err := models.ParsePeriod(req.Period)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	settlement, err := h.svc.CalculateSettlement(r.Context(), req.OwnerID, period)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, settlement)
}

// GetSettlement handles single settlement lookup
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid settlement id"})
		return
	}
	settlement, err := h.svc.GetSettlement(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, settlement)
}

// ListSettlements handles settlement listing, optionally scoped to an owner
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	var ownerID int64
	if v := r.URL.Query().Get("owner_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid owner_id"})
			return
		}
		ownerID = id
	}
	settlements, err := h.svc.ListSettlements(r.Context(), ownerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, settlements)
}

type settleRequest struct {
	Method    string `json:"method"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

// MarkSettlementSettled handles explicit settlement confirmation
func (h *Handler) MarkSettlementSettled(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid settlement id"})
		return
	}
	var req settleRequest
	if !h.decode(w, r, &req) {
		return
	}
	settlement, err := h.svc.MarkSettlementSettled(r.Context(), id, models.PaymentMethod(req.Method), req.Reference, req.Notes)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, settlement)
}

// MarkSettlementPending handles explicit settlement reopening
func (h *Handler) MarkSettlementPending(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid settlement id"})
		return
	}
	settlement, err := h.svc.MarkSettlementPending(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, settlement)
}
