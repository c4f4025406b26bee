package inspections

import (
	"context"
	"testing"

	"github.com/platewatch/platewatch-backend/internal/data/repos/testutil"
)

func TestRankedPrefixMatchesAllTokens(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	repo := NewSearchRepo(db, log)
	ctx := context.Background()

	testutil.SeedEstablishment(t, ctx, tx, "400", "Joe's Pizza", "2024-03-15")
	testutil.SeedEstablishment(t, ctx, tx, "401", "Joe's Diner", "2024-02-01")
	testutil.SeedEstablishment(t, ctx, tx, "402", "Pizza Palace", "2024-01-10")

	rows, err := repo.RankedPrefix(ctx, tx, "joes:* & piz:*")
	if err != nil {
		t.Fatalf("RankedPrefix: %v", err)
	}
	if len(rows) != 1 || rows[0].EntityID != "400" {
		t.Fatalf("every token must prefix-match, got %+v", rows)
	}

	rows, err = repo.RankedPrefix(ctx, tx, "joes:*")
	if err != nil {
		t.Fatalf("RankedPrefix: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("single token must match both joes, got %d rows", len(rows))
	}
}

func TestRankedPrefixJoinsViolations(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	repo := NewSearchRepo(db, log)
	ctx := context.Background()

	testutil.SeedEstablishment(t, ctx, tx, "500", "Busy Bistro", "2024-03-15")
	testutil.SeedViolation(t, ctx, tx, "500", "2024-03-15", "10F", "mice")
	testutil.SeedViolation(t, ctx, tx, "500", "2024-03-15", "08A", "flies")

	rows, err := repo.RankedPrefix(ctx, tx, "busy:*")
	if err != nil {
		t.Fatalf("RankedPrefix: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("the join must fan out per violation, got %d rows", len(rows))
	}
	for _, row := range rows {
		if row.EntityID != "500" || row.InspectionDate == nil || row.ViolationCode == nil {
			t.Fatalf("joined columns missing: %+v", row)
		}
	}
}

func TestRankedPrefixNoMatch(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	repo := NewSearchRepo(db, log)
	ctx := context.Background()

	testutil.SeedEstablishment(t, ctx, tx, "600", "Lonely Luncheonette", "2024-03-15")

	rows, err := repo.RankedPrefix(ctx, tx, "zzzz:*")
	if err != nil {
		t.Fatalf("RankedPrefix: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
