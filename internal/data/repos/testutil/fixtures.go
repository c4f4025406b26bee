package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/platewatch/platewatch-backend/internal/domain/inspections"
	"github.com/platewatch/platewatch-backend/internal/normalization"
)

func Date(tb testing.TB, value string) time.Time {
	tb.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		tb.Fatalf("parse date %q: %v", value, err)
	}
	return d
}

func SeedEstablishment(tb testing.TB, ctx context.Context, tx *gorm.DB, entityID, name, date string) *types.Establishment {
	tb.Helper()
	e := &types.Establishment{
		EntityID:       entityID,
		InspectionDate: Date(tb, date),
		Name:           name,
		NormalizedName: normalization.NormalizeName(name),
		Boro:           "Manhattan",
		Cuisine:        "American",
		Grade:          "A",
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed establishment: %v", err)
	}
	return e
}

func SeedViolation(tb testing.TB, ctx context.Context, tx *gorm.DB, entityID, date, code, description string) *types.Violation {
	tb.Helper()
	v := &types.Violation{
		EntityID:       entityID,
		InspectionDate: Date(tb, date),
		ViolationCode:  code,
		Description:    description,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed violation: %v", err)
	}
	return v
}
