package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/rentdesk/agency-service/internal/service"
)

// Scheduler triggers the periodic maintenance operations in-process. Both
// jobs stay safe to run concurrently with manual HTTP triggers: generation
// is idempotent per (template, period) and the sweep is a single guarded
// update.
type Scheduler struct {
	cron *cron.Cron
	svc  *service.Service
	log  *logrus.Logger
}

// New wires the cron jobs: recurring generation on the 1st of each month,
// overdue sweep every night.
func New(svc *service.Service, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		svc:  svc,
		log:  log,
	}

	if _, err := s.cron.AddFunc("0 3 1 * *", s.generateCurrentMonth); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc("0 1 * * *", s.sweepOverdue); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running the scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) generateCurrentMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	result, err := s.svc.GenerateForMonth(ctx, time.Now().UTC())
	if err != nil {
		s.log.Errorf("Scheduled generation failed: %v", err)
		return
	}
	if len(result.Errors) > 0 {
		s.log.Warnf("Scheduled generation finished with %d template failures", len(result.Errors))
	}
}

func (s *Scheduler) sweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.svc.SweepOverdue(ctx, time.Now().UTC()); err != nil {
		s.log.Errorf("Scheduled overdue sweep failed: %v", err)
	}
}
