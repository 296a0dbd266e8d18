package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/agency-service/internal/models"
	"github.com/rentdesk/agency-service/internal/service"
)

type createObligationRequest struct {
	ContractID     *int64           `json:"contract_id,omitempty"`
	ApartmentID    *int64           `json:"apartment_id,omitempty"`
	Type           string           `json:"type"`
	Payer          string           `json:"payer"`
	Description    string           `json:"description"`
	Amount         decimal.Decimal  `json:"amount"`
	Period         string           `json:"period"`   // YYYY-MM
	DueDate        string           `json:"due_date"` // YYYY-MM-DD
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
}

// CreateObligation handles direct obligation entry
func (h *Handler) CreateObligation(w http.ResponseWriter, r *http.Request) {
	var req createObligationRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, err := models.ParsePeriod(req.Period)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid due_date: expected YYYY-MM-DD"})
		return
	}

	ob, err := h.svc.CreateObligation(r.Context(), service.CreateObligationParams{
		ContractID:     req.ContractID,
		ApartmentID:    req.ApartmentID,
		Type:           models.ObligationType(req.Type),
		Payer:          models.Payer(req.Payer),
		Description:    req.Description,
		Amount:         req.Amount,
		Period:         period,
		DueDate:        dueDate,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, ob)
}

// GetObligation handles single obligation lookup
func (h *Handler) GetObligation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid obligation id"})
		return
	}
	ob, err := h.svc.GetObligation(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, ob)
}

// ListObligations handles obligation listing by contract or by owner+period
func (h *Handler) ListObligations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if contractID, err := strconv.ParseInt(q.Get("contract_id"), 10, 64); err == nil {
		obs, err := h.svc.ListObligationsByContract(r.Context(), contractID)
		if err != nil {
			h.respondError(w, err)
			return
		}
		h.respondJSON(w, http.StatusOK, obs)
		return
	}
	ownerID, err := strconv.ParseInt(q.Get("owner_id"), 10, 64)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "contract_id or owner_id is required"})
		return
	}
	period, err := models.ParsePeriod(q.Get("period"))
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	obs, err := h.svc.ListObligationsByOwnerPeriod(r.Context(), ownerID, period)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, obs)
}

type generateRequest struct {
	Month string `json:"month"` // YYYY-MM
}

// GenerateForMonth handles recurring obligation generation
func (h *Handler) GenerateForMonth(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}
	month, err := models.ParsePeriod(req.Month)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	result, err := h.svc.GenerateForMonth(r.Context(), month)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// SweepOverdue handles the externally triggered overdue sweep
func (h *Handler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	marked, err := h.svc.SweepOverdue(r.Context(), time.Now().UTC())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

// ListEntries handles agency bookkeeping listing for one period
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	period, err := models.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	entries, err := h.svc.ListEntriesByPeriod(r.Context(), period)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, entries)
}
