package inspections

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/platewatch/platewatch-backend/internal/domain/inspections"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

// createBatchSize splits bulk inserts so each generated statement stays well
// under the driver's 65535 bind-parameter cap; a feed page can carry tens of
// thousands of rows.
const createBatchSize = 200

type EstablishmentRepo interface {
	UpsertBatch(ctx context.Context, tx *gorm.DB, rows []*types.Establishment) error
	GetByEntityIDs(ctx context.Context, tx *gorm.DB, entityIDs []string) ([]*types.Establishment, error)
	GetByKey(ctx context.Context, tx *gorm.DB, entityID string, inspectionDate time.Time) (*types.Establishment, error)
}

type establishmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEstablishmentRepo(db *gorm.DB, baseLog *logger.Logger) EstablishmentRepo {
	repoLog := baseLog.With("repo", "EstablishmentRepo")
	return &establishmentRepo{db: db, log: repoLog}
}

// UpsertBatch inserts new (entity_id, inspection_date) rows and overwrites
// every descriptive field on conflict. Ingestion is the source of truth, so
// stale descriptive data never survives a re-ingestion.
func (r *establishmentRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, rows []*types.Establishment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "entity_id"},
				{Name: "inspection_date"},
			},
			DoUpdates: clause.AssignmentColumns(types.EstablishmentUpsertColumns()),
		}).
		CreateInBatches(&rows, createBatchSize).Error
}

func (r *establishmentRepo) GetByEntityIDs(ctx context.Context, tx *gorm.DB, entityIDs []string) ([]*types.Establishment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Establishment
	if len(entityIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("entity_id IN ?", entityIDs).
		Order("entity_id, inspection_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *establishmentRepo) GetByKey(ctx context.Context, tx *gorm.DB, entityID string, inspectionDate time.Time) (*types.Establishment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Establishment
	err := transaction.WithContext(ctx).
		Where("entity_id = ? AND inspection_date = ?", entityID, inspectionDate).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}
