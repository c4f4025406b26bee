package ingestion

import (
	"errors"

	"github.com/robfig/cron"

	apperrors "github.com/platewatch/platewatch-backend/internal/pkg/errors"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

// Scheduler fires the ingestion job on a cron schedule. The job itself is
// responsible for refusing overlap; the scheduler just logs a skipped tick
// when that happens.
type Scheduler struct {
	log  *logger.Logger
	spec string
	job  func() error
	c    *cron.Cron
}

func NewScheduler(baseLog *logger.Logger, spec string, job func() error) *Scheduler {
	return &Scheduler{
		log:  baseLog.With("component", "IngestionScheduler"),
		spec: spec,
		job:  job,
	}
}

func (s *Scheduler) Start() error {
	c := cron.New()
	if err := c.AddFunc(s.spec, func() {
		s.log.Info("Scheduled ingestion tick", "schedule", s.spec)
		switch err := s.job(); {
		case err == nil:
		case errors.Is(err, apperrors.ErrRunInProgress):
			s.log.Warn("Scheduled ingestion tick skipped, run already active")
		default:
			s.log.Error("Scheduled ingestion tick failed", "error", err)
		}
	}); err != nil {
		return err
	}
	c.Start()
	s.c = c
	s.log.Info("Ingestion scheduler started", "schedule", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
		s.log.Info("Ingestion scheduler stopped")
	}
}
