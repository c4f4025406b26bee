package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/platewatch/platewatch-backend/internal/domain/inspections"
	"github.com/platewatch/platewatch-backend/internal/domain/jobs"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&inspections.Establishment{},
		&inspections.Violation{},
		&jobs.IngestionRun{},
	)
}

// EnsureSearchIndexes builds the expression indexes the ranked search depends
// on. The tsvector is computed over normalized_name, which ingestion keeps in
// lockstep with normalization.NormalizeName.
func EnsureSearchIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_establishments_name_fts
		ON establishments
		USING GIN (to_tsvector('english', normalized_name));
	`).Error; err != nil {
		return fmt.Errorf("create idx_establishments_name_fts: %w", err)
	}

	// Cheap lookups for the LEFT JOIN on (entity_id, inspection_date).
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_violations_entity_date
		ON violations (entity_id, inspection_date);
	`).Error; err != nil {
		return fmt.Errorf("create idx_violations_entity_date: %w", err)
	}

	return nil
}
