package inspections

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/platewatch/platewatch-backend/internal/data/repos/testutil"
	types "github.com/platewatch/platewatch-backend/internal/domain/inspections"
	"github.com/platewatch/platewatch-backend/internal/normalization"
)

func TestUpsertBatchOverwritesDescriptiveFields(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	repo := NewEstablishmentRepo(db, log)
	ctx := context.Background()

	date := testutil.Date(t, "2024-03-15")
	original := &types.Establishment{
		EntityID:       "100",
		InspectionDate: date,
		Name:           "Old Name Grill",
		NormalizedName: normalization.NormalizeName("Old Name Grill"),
		Boro:           "Queens",
		Grade:          "B",
	}
	if err := repo.UpsertBatch(ctx, tx, []*types.Establishment{original}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	renamed := &types.Establishment{
		EntityID:       "100",
		InspectionDate: date,
		Name:           "New Name Grill!",
		NormalizedName: normalization.NormalizeName("New Name Grill!"),
		Boro:           "Queens",
		Grade:          "A",
	}
	if err := repo.UpsertBatch(ctx, tx, []*types.Establishment{renamed}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.GetByKey(ctx, tx, "100", date)
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if got.Name != "New Name Grill!" || got.Grade != "A" {
		t.Fatalf("descriptive fields must be overwritten: %+v", got)
	}
	if got.NormalizedName != "new name grill" {
		t.Fatalf("normalized_name must follow the rename, got %q", got.NormalizedName)
	}

	var count int64
	if err := tx.Model(&types.Establishment{}).Where("entity_id = ?", "100").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("conflicting upsert must not add a row, got %d", count)
	}
}

func TestUpsertBatchExceedingOneStatement(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	repo := NewEstablishmentRepo(db, log)
	ctx := context.Background()

	// Far more rows than fit in a single INSERT; the upsert must split the
	// batch rather than blow the driver's bind-parameter cap.
	const n = 5 * createBatchSize
	date := testutil.Date(t, "2024-03-15")
	rows := make([]*types.Establishment, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Bulk Bistro %d", i)
		rows = append(rows, &types.Establishment{
			EntityID:       strconv.Itoa(900000 + i),
			InspectionDate: date,
			Name:           name,
			NormalizedName: normalization.NormalizeName(name),
			Grade:          "B",
		})
	}

	if err := repo.UpsertBatch(ctx, tx, rows); err != nil {
		t.Fatalf("large upsert: %v", err)
	}
	var count int64
	if err := tx.Model(&types.Establishment{}).Where("entity_id >= ?", "900000").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != n {
		t.Fatalf("expected %d rows, got %d", n, count)
	}

	// Replaying the same batch must converge, not duplicate or fail.
	for _, row := range rows {
		row.Grade = "A"
	}
	if err := repo.UpsertBatch(ctx, tx, rows); err != nil {
		t.Fatalf("replayed upsert: %v", err)
	}
	if err := tx.Model(&types.Establishment{}).Where("entity_id >= ?", "900000").Count(&count).Error; err != nil {
		t.Fatalf("count after replay: %v", err)
	}
	if count != n {
		t.Fatalf("replay must not add rows, got %d", count)
	}
	got, err := repo.GetByKey(ctx, tx, "900000", date)
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if got.Grade != "A" {
		t.Fatalf("replay must overwrite descriptive fields, got grade %q", got.Grade)
	}
}

func TestUpsertBatchKeepsDistinctInspectionDates(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	repo := NewEstablishmentRepo(db, log)
	ctx := context.Background()

	rows := []*types.Establishment{
		{EntityID: "200", InspectionDate: testutil.Date(t, "2024-01-10"), Name: "Twin Diner", NormalizedName: "twin diner"},
		{EntityID: "200", InspectionDate: testutil.Date(t, "2024-03-15"), Name: "Twin Diner", NormalizedName: "twin diner"},
	}
	if err := repo.UpsertBatch(ctx, tx, rows); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetByEntityIDs(ctx, tx, []string{"200"})
	if err != nil {
		t.Fatalf("GetByEntityIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("each inspection date must keep its own row, got %d", len(got))
	}
	if !got[0].InspectionDate.After(got[1].InspectionDate) {
		t.Fatalf("rows must come back newest first: %v then %v", got[0].InspectionDate, got[1].InspectionDate)
	}
}
