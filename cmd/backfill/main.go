package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/platewatch/platewatch-backend/internal/app"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

// Backfill pulls inspection history into the store outside the scheduled
// window: the full dataset by default, a wider trailing window with -days, or
// specific establishments with repeated -entity flags.
func main() {
	var entities idList
	var days int
	flag.Var(&entities, "entity", "entity id to refresh (repeatable)")
	flag.IntVar(&days, "days", 0, "trailing window in days (0 means full dataset)")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), application.Cfg.RunTimeout)
	defer cancel()

	log := application.Log

	if len(entities) > 0 {
		log.Info("Refreshing entities", "count", len(entities))
		if err := application.Services.Ingestion.RefreshEntities(ctx, entities); err != nil {
			log.Error("Entity refresh failed", "error", err)
			os.Exit(1)
		}
		log.Info("Entity refresh complete")
		return
	}

	if days > 0 {
		log.Info("Backfilling trailing window", "days", days)
		if err := application.Services.Ingestion.RunUpdate(ctx, days); err != nil {
			log.Error("Window backfill failed", "error", err)
			os.Exit(1)
		}
		log.Info("Window backfill complete")
		return
	}

	log.Info("Backfilling full dataset")
	records, err := application.Clients.Feed.FetchAll(ctx)
	if err != nil {
		log.Warn("Full fetch incomplete, reconciling what arrived", "records", len(records), "error", err)
	}
	establishments, violations, recErr := application.Services.Reconciler.Reconcile(ctx, records)
	if recErr != nil {
		log.Error("Full backfill failed", "error", recErr)
		os.Exit(1)
	}
	log.Info("Full backfill complete",
		"fetched", len(records),
		"establishments", establishments,
		"violations", violations,
	)
	if err != nil {
		os.Exit(1)
	}
}
