package ingestion

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/platewatch/platewatch-backend/internal/clients/socrata"
	repos "github.com/platewatch/platewatch-backend/internal/data/repos/inspections"
	"github.com/platewatch/platewatch-backend/internal/data/repos/testutil"
	types "github.com/platewatch/platewatch-backend/internal/domain/inspections"
)

func record(entityID, name, date, code, description string) socrata.InspectionRecord {
	return socrata.InspectionRecord{
		EntityID:             entityID,
		Name:                 name,
		Boro:                 "Queens",
		Cuisine:              "Pizza",
		Latitude:             "40.7128",
		Longitude:            "-74.0060",
		InspectionDate:       date,
		Grade:                "A",
		CriticalFlag:         "N",
		ViolationCode:        code,
		ViolationDescription: description,
	}
}

func TestPrepareDedupsEstablishmentsFirstWins(t *testing.T) {
	r := &Reconciler{log: testutil.Logger(t)}

	first := record("100", "Joe's Pizza", "2024-03-15", "10F", "mice")
	second := record("100", "JOES PIZZA LLC", "2024-03-15", "08A", "flies")

	b := r.prepare([]socrata.InspectionRecord{first, second})

	if len(b.establishments) != 1 {
		t.Fatalf("expected 1 establishment, got %d", len(b.establishments))
	}
	if got := b.establishments[0].Name; got != "Joe's Pizza" {
		t.Fatalf("first record must win the dedup, got name %q", got)
	}
	if len(b.violations) != 2 {
		t.Fatalf("both violations must survive the dedup, got %d", len(b.violations))
	}
	if b.skipped != 0 {
		t.Fatalf("nothing should be skipped, got %d", b.skipped)
	}
}

func TestPrepareSkipsMalformedRecords(t *testing.T) {
	r := &Reconciler{log: testutil.Logger(t)}

	records := []socrata.InspectionRecord{
		record("", "No Id Diner", "2024-03-15", "", ""),
		record("200", "Bad Date Cafe", "not a date", "", ""),
		func() socrata.InspectionRecord {
			rec := record("300", "Bad Coords Bar", "2024-03-15", "", "")
			rec.Latitude = "forty point seven"
			return rec
		}(),
		record("400", "Kept Kitchen", "2024-03-15", "", ""),
	}

	b := r.prepare(records)

	if b.skipped != 3 {
		t.Fatalf("expected 3 skipped records, got %d", b.skipped)
	}
	if len(b.establishments) != 1 || b.establishments[0].EntityID != "400" {
		t.Fatalf("only the well-formed record should survive: %+v", b.establishments)
	}
}

func TestPrepareTreatsPlaceholderCoordsAsZero(t *testing.T) {
	r := &Reconciler{log: testutil.Logger(t)}

	rec := record("500", "Mystery Spot", "2024-03-15", "", "")
	rec.Latitude = "N/A"
	rec.Longitude = ""

	b := r.prepare([]socrata.InspectionRecord{rec})

	if len(b.establishments) != 1 {
		t.Fatalf("placeholder coordinates must not skip the record")
	}
	e := b.establishments[0]
	if e.Latitude != 0 || e.Longitude != 0 {
		t.Fatalf("placeholder coordinates must map to zero, got %v/%v", e.Latitude, e.Longitude)
	}
}

func TestPrepareOmitsViolationWithoutCode(t *testing.T) {
	r := &Reconciler{log: testutil.Logger(t)}

	b := r.prepare([]socrata.InspectionRecord{
		record("600", "Clean Canteen", "2024-03-15", "", "leftover description"),
		record("600", "Clean Canteen", "2024-03-15", "10F", "mice"),
	})

	if len(b.violations) != 1 {
		t.Fatalf("records without a violation code must not produce rows, got %d", len(b.violations))
	}
	if b.violations[0].ViolationCode != "10F" {
		t.Fatalf("unexpected violation row: %+v", b.violations[0])
	}
}

func TestReconcileConvergesRegardlessOfOrder(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	batchA := []socrata.InspectionRecord{
		record("700", "Order Cafe", "2024-03-15", "10F", "mice"),
		record("700", "Order Cafe", "2024-03-15", "08A", "flies"),
		record("701", "Other Diner", "2024-02-01", "04L", "vermin"),
	}
	batchB := []socrata.InspectionRecord{
		record("700", "Order Cafe", "2024-03-15", "08A", "flies"),
		record("702", "Third Place", "2024-01-10", "", ""),
	}

	apply := func(t *testing.T, batches ...[]socrata.InspectionRecord) (int64, int64) {
		tx := testutil.Tx(t, db)
		rec := NewReconciler(tx, log, repos.NewEstablishmentRepo(tx, log), repos.NewViolationRepo(tx, log))
		for _, batch := range batches {
			if _, _, err := rec.Reconcile(ctx, batch); err != nil {
				t.Fatalf("reconcile: %v", err)
			}
		}
		var establishments, violations int64
		if err := tx.Model(&types.Establishment{}).Count(&establishments).Error; err != nil {
			t.Fatalf("count establishments: %v", err)
		}
		if err := tx.Model(&types.Violation{}).Count(&violations).Error; err != nil {
			t.Fatalf("count violations: %v", err)
		}
		return establishments, violations
	}

	estAB, vioAB := apply(t, batchA, batchB)
	estBA, vioBA := apply(t, batchB, batchA)

	if estAB != estBA || vioAB != vioBA {
		t.Fatalf("row counts must not depend on batch order: A,B=(%d,%d) B,A=(%d,%d)",
			estAB, vioAB, estBA, vioBA)
	}
	if estAB != 3 {
		t.Fatalf("expected 3 establishment rows, got %d", estAB)
	}
	if vioAB != 3 {
		t.Fatalf("expected 3 distinct violation tuples, got %d", vioAB)
	}
}

type failingViolationRepo struct {
	err error
}

func (f *failingViolationRepo) InsertIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.Violation) error {
	return f.err
}

func (f *failingViolationRepo) GetByEntityIDs(ctx context.Context, tx *gorm.DB, entityIDs []string) ([]*types.Violation, error) {
	return nil, f.err
}

func (f *failingViolationRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	return 0, f.err
}

func TestReconcileRollsBackWholeBatchOnFailure(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	tx := testutil.Tx(t, db)

	boom := errors.New("violation insert failed")
	rec := NewReconciler(tx, log, repos.NewEstablishmentRepo(tx, log), &failingViolationRepo{err: boom})

	written, _, err := rec.Reconcile(ctx, []socrata.InspectionRecord{
		record("800", "Doomed Deli", "2024-03-15", "10F", "mice"),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the repo failure to surface, got %v", err)
	}
	if written != 0 {
		t.Fatalf("a rolled-back batch must report zero rows written, got %d", written)
	}

	var count int64
	if err := tx.Model(&types.Establishment{}).Where("entity_id = ?", "800").Count(&count).Error; err != nil {
		t.Fatalf("count establishments: %v", err)
	}
	if count != 0 {
		t.Fatal("establishment row must not survive the rollback")
	}
}

func TestReconcileEmptyBatchIsNoOp(t *testing.T) {
	rec := NewReconciler(nil, testutil.Logger(t), nil, nil)
	est, vio, err := rec.Reconcile(context.Background(), nil)
	if err != nil || est != 0 || vio != 0 {
		t.Fatalf("empty batch: got (%d, %d, %v)", est, vio, err)
	}
}
