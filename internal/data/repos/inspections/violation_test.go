package inspections

import (
	"context"
	"fmt"
	"testing"

	"github.com/platewatch/platewatch-backend/internal/data/repos/testutil"
	types "github.com/platewatch/platewatch-backend/internal/domain/inspections"
)

func TestInsertIgnoreDuplicatesAbsorbsRepeatedTuples(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	repo := NewViolationRepo(db, log)
	ctx := context.Background()

	testutil.SeedEstablishment(t, ctx, tx, "300", "Repeat Cafe", "2024-03-15")
	date := testutil.Date(t, "2024-03-15")

	row := func() *types.Violation {
		return &types.Violation{
			EntityID:       "300",
			InspectionDate: date,
			ViolationCode:  "10F",
			Description:    "mice",
		}
	}

	if err := repo.InsertIgnoreDuplicates(ctx, tx, []*types.Violation{row()}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := repo.InsertIgnoreDuplicates(ctx, tx, []*types.Violation{row(), row()}); err != nil {
		t.Fatalf("duplicate insert must be absorbed: %v", err)
	}

	count, err := repo.CountAll(ctx, tx)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 1 {
		t.Fatalf("identical tuples must collapse to one row, got %d", count)
	}

	differing := row()
	differing.Description = "mice droppings observed"
	if err := repo.InsertIgnoreDuplicates(ctx, tx, []*types.Violation{differing}); err != nil {
		t.Fatalf("insert with differing description: %v", err)
	}
	count, err = repo.CountAll(ctx, tx)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != 2 {
		t.Fatalf("a differing description is a distinct finding, got %d rows", count)
	}
}

func TestInsertIgnoreDuplicatesExceedingOneStatement(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	repo := NewViolationRepo(db, log)
	ctx := context.Background()

	testutil.SeedEstablishment(t, ctx, tx, "901", "Bulk Bar", "2024-03-15")
	date := testutil.Date(t, "2024-03-15")

	const n = 5 * createBatchSize
	rows := make([]*types.Violation, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, &types.Violation{
			EntityID:       "901",
			InspectionDate: date,
			ViolationCode:  fmt.Sprintf("C%04d", i),
			Description:    "finding",
		})
	}

	if err := repo.InsertIgnoreDuplicates(ctx, tx, rows); err != nil {
		t.Fatalf("large insert: %v", err)
	}
	count, err := repo.CountAll(ctx, tx)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if count != n {
		t.Fatalf("expected %d rows, got %d", n, count)
	}

	if err := repo.InsertIgnoreDuplicates(ctx, tx, rows); err != nil {
		t.Fatalf("replayed insert must be absorbed: %v", err)
	}
	count, err = repo.CountAll(ctx, tx)
	if err != nil {
		t.Fatalf("CountAll after replay: %v", err)
	}
	if count != n {
		t.Fatalf("replay must not add rows, got %d", count)
	}
}

func TestGetByEntityIDsEmptyInput(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := NewViolationRepo(db, log)

	got, err := repo.GetByEntityIDs(context.Background(), testutil.Tx(t, db), nil)
	if err != nil {
		t.Fatalf("GetByEntityIDs: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty id set must return nothing, got %d", len(got))
	}
}
