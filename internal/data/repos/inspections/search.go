package inspections

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

// SearchRow is one flat row of the establishments-to-violations join, in rank
// order. The assembler folds these into nested per-establishment documents.
type SearchRow struct {
	EntityID       string     `gorm:"column:entity_id"`
	Name           string     `gorm:"column:name"`
	Boro           string     `gorm:"column:boro"`
	Building       string     `gorm:"column:building"`
	Street         string     `gorm:"column:street"`
	Zipcode        string     `gorm:"column:zipcode"`
	Phone          string     `gorm:"column:phone"`
	Latitude       float64    `gorm:"column:latitude"`
	Longitude      float64    `gorm:"column:longitude"`
	Cuisine        string     `gorm:"column:cuisine"`
	InspectionDate *time.Time `gorm:"column:inspection_date"`
	CriticalFlag   *string    `gorm:"column:critical_flag"`
	Grade          *string    `gorm:"column:grade"`
	InspectionType *string    `gorm:"column:inspection_type"`
	ViolationCode  *string    `gorm:"column:violation_code"`
	ViolationDesc  *string    `gorm:"column:violation_description"`
	Rank           float64    `gorm:"column:rank"`
}

// SearchResultLimit caps the flat joined row set before assembly. A single
// establishment with very many inspections can legitimately exhaust it.
const SearchResultLimit = 100

type SearchRepo interface {
	RankedPrefix(ctx context.Context, tx *gorm.DB, tsquery string) ([]SearchRow, error)
}

type searchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSearchRepo(db *gorm.DB, baseLog *logger.Logger) SearchRepo {
	repoLog := baseLog.With("repo", "SearchRepo")
	return &searchRepo{db: db, log: repoLog}
}

// RankedPrefix runs the store-native ranked prefix match. The tsquery string
// comes from the planner (`tok:* & tok:*`) and is bound as a parameter, never
// interpolated. Ties rank-first, then display name, then newest inspection.
func (r *searchRepo) RankedPrefix(ctx context.Context, tx *gorm.DB, tsquery string) ([]SearchRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	sql := `
		SELECT e.entity_id, e.name, e.boro, e.building, e.street, e.zipcode, e.phone,
		       e.latitude, e.longitude, e.cuisine, e.inspection_date, e.critical_flag,
		       e.grade, e.inspection_type, v.violation_code, v.violation_description,
		       ts_rank_cd(to_tsvector('english', e.normalized_name), to_tsquery('english', ?)) AS rank
		FROM establishments e
		LEFT JOIN violations v
		       ON e.entity_id = v.entity_id AND e.inspection_date = v.inspection_date
		WHERE to_tsvector('english', e.normalized_name) @@ to_tsquery('english', ?)
		ORDER BY rank DESC, e.name ASC, e.inspection_date DESC
		LIMIT ?;
	`

	var rows []SearchRow
	if err := transaction.WithContext(ctx).
		Raw(sql, tsquery, tsquery, SearchResultLimit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
