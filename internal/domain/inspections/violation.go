package inspections

import (
	"time"
)

// Violation is a single code+description finding attached to an inspection.
// Uniqueness is the full (entity_id, inspection_date, code, description)
// tuple; repeated fetches of the same finding are absorbed by a conflict-free
// insert, never duplicated.
type Violation struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`

	EntityID       string    `gorm:"column:entity_id;not null;uniqueIndex:idx_violation_tuple,priority:1" json:"entity_id"`
	InspectionDate time.Time `gorm:"column:inspection_date;type:date;not null;uniqueIndex:idx_violation_tuple,priority:2" json:"inspection_date"`
	ViolationCode  string    `gorm:"column:violation_code;not null;uniqueIndex:idx_violation_tuple,priority:3" json:"violation_code"`
	Description    string    `gorm:"column:violation_description;not null;uniqueIndex:idx_violation_tuple,priority:4" json:"violation_description"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Violation) TableName() string { return "violations" }
