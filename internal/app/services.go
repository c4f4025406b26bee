package app

import (
	"gorm.io/gorm"

	"github.com/platewatch/platewatch-backend/internal/ingestion"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
	"github.com/platewatch/platewatch-backend/internal/services"
)

type Services struct {
	Search     services.SearchService
	Ingestion  services.IngestionService
	Reconciler *ingestion.Reconciler
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	reconciler := ingestion.NewReconciler(db, log, repos.Establishment, repos.Violation)

	return Services{
		Search:     services.NewSearchService(log, repos.Search, clients.Cache, cfg.CacheTTL, cfg.EmptyCacheTTL),
		Ingestion:  services.NewIngestionService(log, clients.Feed, reconciler, repos.IngestionRun, cfg.RunTimeout),
		Reconciler: reconciler,
	}
}
