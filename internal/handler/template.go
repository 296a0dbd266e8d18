package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/agency-service/internal/models"
	"github.com/rentdesk/agency-service/internal/service"
)

type createTemplateRequest struct {
	ContractID     *int64           `json:"contract_id,omitempty"`
	ApartmentID    *int64           `json:"apartment_id,omitempty"`
	Type           string           `json:"type"`
	Payer          string           `json:"payer"`
	Description    string           `json:"description"`
	Amount         decimal.Decimal  `json:"amount"`
	DayOfMonth     int              `json:"day_of_month"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
	StartDate      string           `json:"start_date"`         // YYYY-MM-DD
	EndDate        string           `json:"end_date,omitempty"` // YYYY-MM-DD
}

// CreateTemplate handles recurring template registration
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date: expected YYYY-MM-DD"})
		return
	}
	var endDate *time.Time
	if req.EndDate != "" {
		d, err := parseDate(req.EndDate)
		if err != nil {
			h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date: expected YYYY-MM-DD"})
			return
		}
		endDate = &d
	}

	t, err := h.svc.CreateTemplate(r.Context(), service.CreateTemplateParams{
		ContractID:     req.ContractID,
		ApartmentID:    req.ApartmentID,
		Type:           models.ObligationType(req.Type),
		Payer:          models.Payer(req.Payer),
		Description:    req.Description,
		Amount:         req.Amount,
		DayOfMonth:     req.DayOfMonth,
		CommissionRate: req.CommissionRate,
		StartDate:      startDate,
		EndDate:        endDate,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, t)
}

// ListTemplates handles template listing
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	templates, err := h.svc.ListTemplates(r.Context(), activeOnly)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, templates)
}

// DeactivateTemplate handles stopping a template
func (h *Handler) DeactivateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template id"})
		return
	}
	t, err := h.svc.DeactivateTemplate(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, t)
}
