package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rentdesk/agency-service/internal/accounting"
	"github.com/rentdesk/agency-service/internal/models"
	"github.com/rentdesk/agency-service/internal/repository"
)

// GenerationResult reports one recurring-generation run
type GenerationResult struct {
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// GenerateForMonth materializes obligations from all active templates whose
// window covers the target month. At most one obligation exists per
// (template, period): duplicates are counted as skipped, enforced by the
// storage uniqueness constraint so concurrent runs for the same month stay
// safe. A failing template never aborts the rest of the run.
func (s *Service) GenerateForMonth(ctx context.Context, targetMonth time.Time) (*GenerationResult, error) {
	period := models.FirstOfMonth(targetMonth)
	templates, err := s.store.ListTemplates(ctx, true)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{}
	for i := range templates {
		t := &templates[i]
		if !t.CoversPeriod(period) {
			continue
		}
		if err := s.generateFromTemplate(ctx, t, period); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("template %d: %v", t.ID, err))
			s.log.Errorf("Failed to generate obligation from template %d for %s: %v",
				t.ID, models.FormatPeriod(period), err)
			continue
		}
		result.Generated++
	}

	s.log.WithFields(map[string]any{
		"period":    models.FormatPeriod(period),
		"generated": result.Generated,
		"skipped":   result.Skipped,
		"failed":    len(result.Errors),
	}).Info("Recurring generation finished")
	return result, nil
}

func (s *Service) generateFromTemplate(ctx context.Context, t *models.RecurringObligationTemplate, period time.Time) error {
	params := CreateObligationParams{
		ContractID:     t.ContractID,
		ApartmentID:    t.ApartmentID,
		Type:           t.Type,
		Payer:          t.Payer,
		Description:    t.Description,
		Amount:         t.Amount,
		Period:         period,
		DueDate:        accounting.DueDateForMonth(period, t.DayOfMonth),
		CommissionRate: t.CommissionRate,
	}
	ob, entry, err := s.buildObligation(ctx, params, &t.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	return s.store.CreateObligation(ctx, ob, entry)
}
