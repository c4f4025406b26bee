package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// IngestionRun records one fetch+reconcile cycle for offline diagnosis.
// Ingestion is asynchronous, so the trigger boundary never reports completion;
// this table is where the outcome lands.
type IngestionRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	WindowDays int            `gorm:"column:window_days;not null" json:"window_days"`
	StartedAt  time.Time      `gorm:"column:started_at;not null;index" json:"started_at"`
	FinishedAt *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
	Error      string         `gorm:"column:error;type:text" json:"error,omitempty"`
	Stats      datatypes.JSON `gorm:"column:stats;type:jsonb" json:"stats"`
}

func (IngestionRun) TableName() string { return "ingestion_runs" }
