package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/platewatch/platewatch-backend/internal/domain/jobs"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

type IngestionRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.IngestionRun) error
	Finish(ctx context.Context, tx *gorm.DB, runID uuid.UUID, status string, errMsg string, stats []byte) error
	GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.IngestionRun, error)
}

type ingestionRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngestionRunRepo(db *gorm.DB, baseLog *logger.Logger) IngestionRunRepo {
	repoLog := baseLog.With("repo", "IngestionRunRepo")
	return &ingestionRunRepo{db: db, log: repoLog}
}

func (r *ingestionRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.IngestionRun) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(run).Error
}

func (r *ingestionRunRepo) Finish(ctx context.Context, tx *gorm.DB, runID uuid.UUID, status string, errMsg string, stats []byte) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": &now,
		"error":       errMsg,
	}
	if len(stats) > 0 {
		updates["stats"] = stats
	}
	return transaction.WithContext(ctx).
		Model(&types.IngestionRun{}).
		Where("id = ?", runID).
		Updates(updates).Error
}

func (r *ingestionRunRepo) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.IngestionRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if limit <= 0 {
		limit = 20
	}
	var results []*types.IngestionRun
	if err := transaction.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
