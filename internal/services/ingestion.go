package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platewatch/platewatch-backend/internal/clients/socrata"
	jobrepos "github.com/platewatch/platewatch-backend/internal/data/repos/jobs"
	jobtypes "github.com/platewatch/platewatch-backend/internal/domain/jobs"
	apperrors "github.com/platewatch/platewatch-backend/internal/pkg/errors"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

// BatchReconciler merges fetched feed records into the store as one
// transaction and reports how many rows it wrote.
type BatchReconciler interface {
	Reconcile(ctx context.Context, records []socrata.InspectionRecord) (int, int, error)
}

type IngestionService interface {
	// TriggerUpdate starts an ingestion cycle in the background. It returns
	// apperrors.ErrRunInProgress when a cycle is already active; at most one
	// cycle runs at a time.
	TriggerUpdate(windowDays int) error
	// RunUpdate runs one ingestion cycle synchronously, holding the same run
	// guard as TriggerUpdate.
	RunUpdate(ctx context.Context, windowDays int) error
	// RefreshEntities re-fetches and reconciles every record for the given
	// entity ids, outside the run guard.
	RefreshEntities(ctx context.Context, entityIDs []string) error
	// RecentRuns lists the latest recorded ingestion cycles, newest first.
	RecentRuns(ctx context.Context, limit int) ([]*jobtypes.IngestionRun, error)
}

type ingestionService struct {
	log        *logger.Logger
	feed       socrata.Client
	reconciler BatchReconciler
	runs       jobrepos.IngestionRunRepo
	runTimeout time.Duration

	mu sync.Mutex
}

func NewIngestionService(
	baseLog *logger.Logger,
	feed socrata.Client,
	reconciler BatchReconciler,
	runs jobrepos.IngestionRunRepo,
	runTimeout time.Duration,
) IngestionService {
	return &ingestionService{
		log:        baseLog.With("service", "IngestionService"),
		feed:       feed,
		reconciler: reconciler,
		runs:       runs,
		runTimeout: runTimeout,
	}
}

func (s *ingestionService) TriggerUpdate(windowDays int) error {
	if !s.mu.TryLock() {
		return apperrors.ErrRunInProgress
	}

	go func() {
		defer s.mu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()
		if err := s.runLocked(ctx, windowDays); err != nil {
			s.log.Error("Background ingestion run failed", "error", err)
		}
	}()
	return nil
}

func (s *ingestionService) RunUpdate(ctx context.Context, windowDays int) error {
	if !s.mu.TryLock() {
		return apperrors.ErrRunInProgress
	}
	defer s.mu.Unlock()
	return s.runLocked(ctx, windowDays)
}

// runLocked executes one fetch-and-reconcile cycle. The caller holds the run
// guard. A partial fetch still reconciles whatever arrived: the reconciler is
// idempotent and the next run converges on the rest.
func (s *ingestionService) runLocked(ctx context.Context, windowDays int) error {
	run := &jobtypes.IngestionRun{
		ID:         uuid.New(),
		Status:     jobtypes.RunStatusRunning,
		WindowDays: windowDays,
		StartedAt:  time.Now(),
	}
	if err := s.runs.Create(ctx, nil, run); err != nil {
		s.log.Error("Failed to record ingestion run start", "error", err)
		return err
	}
	s.log.Info("Ingestion run started", "run_id", run.ID, "window_days", windowDays)

	records, fetchErr := s.feed.FetchWindow(ctx, windowDays)
	if fetchErr != nil {
		s.log.Warn("Feed fetch incomplete, reconciling partial batch",
			"run_id", run.ID, "records", len(records), "error", fetchErr)
	}

	establishments, violations, reconcileErr := s.reconciler.Reconcile(ctx, records)

	stats := s.marshalStats(run.ID, map[string]interface{}{
		"fetched":        len(records),
		"establishments": establishments,
		"violations":     violations,
		"duration_ms":    time.Since(run.StartedAt).Milliseconds(),
	})

	runErr := reconcileErr
	if runErr == nil {
		runErr = fetchErr
	}

	status := jobtypes.RunStatusSucceeded
	errMsg := ""
	if runErr != nil {
		status = jobtypes.RunStatusFailed
		errMsg = runErr.Error()
	}
	if err := s.runs.Finish(ctx, nil, run.ID, status, errMsg, stats); err != nil {
		s.log.Error("Failed to record ingestion run result", "run_id", run.ID, "error", err)
	}

	if runErr != nil {
		s.log.Error("Ingestion run failed", "run_id", run.ID, "error", runErr)
		return runErr
	}
	s.log.Info("Ingestion run succeeded",
		"run_id", run.ID,
		"fetched", len(records),
		"establishments", establishments,
		"violations", violations,
	)
	return nil
}

func (s *ingestionService) RefreshEntities(ctx context.Context, entityIDs []string) error {
	if len(entityIDs) == 0 {
		return nil
	}
	records, err := s.feed.FetchByEntityIDs(ctx, entityIDs)
	if err != nil {
		return err
	}
	_, _, err = s.reconciler.Reconcile(ctx, records)
	return err
}

func (s *ingestionService) RecentRuns(ctx context.Context, limit int) ([]*jobtypes.IngestionRun, error) {
	return s.runs.GetRecent(ctx, nil, limit)
}

func (s *ingestionService) marshalStats(runID uuid.UUID, stats map[string]interface{}) []byte {
	payload, err := json.Marshal(stats)
	if err != nil {
		s.log.Warn("Failed to serialize run stats", "run_id", runID, "error", err)
		return nil
	}
	return payload
}
