package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/platewatch/platewatch-backend/internal/http/handlers"
	httpMW "github.com/platewatch/platewatch-backend/internal/http/middleware"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AllowedOrigins string
	EnableTracing  bool

	SearchHandler    *httpH.SearchHandler
	IngestionHandler *httpH.IngestionHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.EnableTracing {
		r.Use(otelgin.Middleware("platewatch-backend"))
	}
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.SearchHandler != nil {
			api.GET("/search", cfg.SearchHandler.Search)
		}
		if cfg.IngestionHandler != nil {
			api.POST("/trigger-update", cfg.IngestionHandler.TriggerUpdate)
			api.GET("/ingestion-runs", cfg.IngestionHandler.ListRuns)
		}
	}

	return r
}
