package inspections

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/platewatch/platewatch-backend/internal/domain/inspections"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

type ViolationRepo interface {
	InsertIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.Violation) error
	GetByEntityIDs(ctx context.Context, tx *gorm.DB, entityIDs []string) ([]*types.Violation, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type violationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewViolationRepo(db *gorm.DB, baseLog *logger.Logger) ViolationRepo {
	repoLog := baseLog.With("repo", "ViolationRepo")
	return &violationRepo{db: db, log: repoLog}
}

// InsertIgnoreDuplicates appends violation rows, silently absorbing any row
// whose full (entity_id, inspection_date, code, description) tuple already
// exists. Overlapping fetch windows re-deliver the same findings constantly.
func (r *violationRepo) InsertIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.Violation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, createBatchSize).Error
}

func (r *violationRepo) GetByEntityIDs(ctx context.Context, tx *gorm.DB, entityIDs []string) ([]*types.Violation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Violation
	if len(entityIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("entity_id IN ?", entityIDs).
		Order("entity_id, inspection_date DESC, id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *violationRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Violation{}).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
