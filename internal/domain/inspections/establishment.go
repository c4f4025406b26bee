package inspections

import (
	"time"
)

// Establishment is one inspection fact for a food establishment, keyed by the
// stable external entity id plus the inspection date. Descriptive fields are
// overwritten wholesale on re-ingestion; NormalizedName must always equal
// normalization.NormalizeName(Name) and is enforced at write time.
type Establishment struct {
	EntityID       string    `gorm:"column:entity_id;primaryKey" json:"entity_id"`
	InspectionDate time.Time `gorm:"column:inspection_date;type:date;primaryKey" json:"inspection_date"`

	Name           string `gorm:"column:name;not null" json:"name"`
	NormalizedName string `gorm:"column:normalized_name;not null;default:''" json:"-"`

	Boro     string `gorm:"column:boro" json:"boro"`
	Building string `gorm:"column:building" json:"building"`
	Street   string `gorm:"column:street" json:"street"`
	Zipcode  string `gorm:"column:zipcode" json:"zipcode"`
	Phone    string `gorm:"column:phone" json:"phone"`

	Latitude  float64 `gorm:"column:latitude" json:"latitude"`
	Longitude float64 `gorm:"column:longitude" json:"longitude"`

	Cuisine string `gorm:"column:cuisine" json:"cuisine"`

	Grade          string     `gorm:"column:grade" json:"grade"`
	GradeDate      *time.Time `gorm:"column:grade_date;type:date" json:"grade_date,omitempty"`
	InspectionType string     `gorm:"column:inspection_type" json:"inspection_type"`
	CriticalFlag   string     `gorm:"column:critical_flag" json:"critical_flag"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Establishment) TableName() string { return "establishments" }

// EstablishmentUpsertColumns lists every descriptive column overwritten by the
// ingestion upsert. The key columns and created_at are deliberately absent.
func EstablishmentUpsertColumns() []string {
	return []string{
		"name",
		"normalized_name",
		"boro",
		"building",
		"street",
		"zipcode",
		"phone",
		"latitude",
		"longitude",
		"cuisine",
		"grade",
		"grade_date",
		"inspection_type",
		"critical_flag",
		"updated_at",
	}
}
