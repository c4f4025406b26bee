package app

import (
	httpH "github.com/platewatch/platewatch-backend/internal/http/handlers"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

type Handlers struct {
	Search    *httpH.SearchHandler
	Ingestion *httpH.IngestionHandler
	Health    *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Search:    httpH.NewSearchHandler(log, services.Search),
		Ingestion: httpH.NewIngestionHandler(log, services.Ingestion, cfg.UpdateSecret, cfg.FetchWindowDays),
		Health:    httpH.NewHealthHandler(),
	}
}
