package ingestion

import (
	"context"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/platewatch/platewatch-backend/internal/clients/socrata"
	repos "github.com/platewatch/platewatch-backend/internal/data/repos/inspections"
	types "github.com/platewatch/platewatch-backend/internal/domain/inspections"
	"github.com/platewatch/platewatch-backend/internal/normalization"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

// Reconciler merges a fetched batch into the store. The whole batch commits
// or rolls back as one transaction; repeated and overlapping batches converge
// on the same row sets regardless of order.
type Reconciler struct {
	db             *gorm.DB
	log            *logger.Logger
	establishments repos.EstablishmentRepo
	violations     repos.ViolationRepo
}

func NewReconciler(db *gorm.DB, baseLog *logger.Logger, establishments repos.EstablishmentRepo, violations repos.ViolationRepo) *Reconciler {
	return &Reconciler{
		db:             db,
		log:            baseLog.With("component", "Reconciler"),
		establishments: establishments,
		violations:     violations,
	}
}

type batch struct {
	establishments []*types.Establishment
	violations     []*types.Violation
	skipped        int
}

type establishmentKey struct {
	entityID string
	date     time.Time
}

// Reconcile writes the batch in a single transaction: establishment rows
// before violation rows, so every violation's (entity_id, inspection_date)
// parent exists by the time it lands. Any store failure rolls the whole batch
// back and reports zero rows written.
func (r *Reconciler) Reconcile(ctx context.Context, records []socrata.InspectionRecord) (int, int, error) {
	if len(records) == 0 {
		r.log.Info("No records to reconcile")
		return 0, 0, nil
	}

	b := r.prepare(records)
	r.log.Info("Prepared batch",
		"records", len(records),
		"establishments", len(b.establishments),
		"violations", len(b.violations),
		"skipped", b.skipped,
	)

	if len(b.establishments) == 0 && len(b.violations) == 0 {
		return 0, 0, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.establishments.UpsertBatch(ctx, tx, b.establishments); err != nil {
			return err
		}
		return r.violations.InsertIgnoreDuplicates(ctx, tx, b.violations)
	})
	if err != nil {
		r.log.Error("Batch transaction failed, rolled back", "error", err)
		return 0, 0, err
	}

	r.log.Info("Batch committed",
		"establishments_written", len(b.establishments),
		"violations_written", len(b.violations),
	)
	return len(b.establishments), len(b.violations), nil
}

// prepare converts raw records into row sets. Establishment rows are deduped
// by (entity_id, inspection_date) with the first occurrence winning inside
// the batch. Violations are not deduped here: the store's conflict-free
// insert enforces tuple uniqueness. Malformed records are skipped and logged,
// never fatal.
func (r *Reconciler) prepare(records []socrata.InspectionRecord) batch {
	var b batch
	seen := make(map[establishmentKey]struct{})
	now := time.Now()

	for _, rec := range records {
		entityID := strings.TrimSpace(rec.EntityID)
		if entityID == "" {
			r.log.Warn("Skipping record without entity id", "name", rec.Name)
			b.skipped++
			continue
		}

		inspectionDate, err := ParseDate(rec.InspectionDate)
		if err != nil {
			r.log.Warn("Skipping record with unparseable inspection date",
				"entity_id", entityID, "raw_date", rec.InspectionDate, "error", err)
			b.skipped++
			continue
		}

		latitude, err := parseCoordinate(rec.Latitude)
		if err != nil {
			r.log.Warn("Skipping record with bad latitude", "entity_id", entityID, "raw", rec.Latitude, "error", err)
			b.skipped++
			continue
		}
		longitude, err := parseCoordinate(rec.Longitude)
		if err != nil {
			r.log.Warn("Skipping record with bad longitude", "entity_id", entityID, "raw", rec.Longitude, "error", err)
			b.skipped++
			continue
		}

		key := establishmentKey{entityID: entityID, date: inspectionDate}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}

			var gradeDate *time.Time
			if gd, err := ParseDate(rec.GradeDate); err == nil {
				gradeDate = &gd
			} else if strings.TrimSpace(rec.GradeDate) != "" {
				r.log.Warn("Dropping unparseable grade date", "entity_id", entityID, "raw_date", rec.GradeDate)
			}

			b.establishments = append(b.establishments, &types.Establishment{
				EntityID:       entityID,
				InspectionDate: inspectionDate,
				Name:           rec.Name,
				NormalizedName: normalization.NormalizeName(rec.Name),
				Boro:           rec.Boro,
				Building:       rec.Building,
				Street:         rec.Street,
				Zipcode:        rec.Zipcode,
				Phone:          rec.Phone,
				Latitude:       latitude,
				Longitude:      longitude,
				Cuisine:        rec.Cuisine,
				Grade:          rec.Grade,
				GradeDate:      gradeDate,
				InspectionType: rec.InspectionType,
				CriticalFlag:   rec.CriticalFlag,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
		}

		if rec.ViolationCode != "" {
			b.violations = append(b.violations, &types.Violation{
				EntityID:       entityID,
				InspectionDate: inspectionDate,
				ViolationCode:  rec.ViolationCode,
				Description:    rec.ViolationDescription,
				CreatedAt:      now,
			})
		}
	}

	return b
}

func parseCoordinate(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "N/A" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
