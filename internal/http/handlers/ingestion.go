package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/platewatch/platewatch-backend/internal/http/response"
	apperrors "github.com/platewatch/platewatch-backend/internal/pkg/errors"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
	"github.com/platewatch/platewatch-backend/internal/services"
)

type IngestionHandler struct {
	log          *logger.Logger
	ingestion    services.IngestionService
	updateSecret string
	windowDays   int
}

func NewIngestionHandler(log *logger.Logger, ingestion services.IngestionService, updateSecret string, windowDays int) *IngestionHandler {
	return &IngestionHandler{
		log:          log.With("handler", "IngestionHandler"),
		ingestion:    ingestion,
		updateSecret: updateSecret,
		windowDays:   windowDays,
	}
}

// authorize checks the X-Update-Secret header in constant time. When no
// secret is configured every request is refused rather than the endpoint
// becoming open.
func (h *IngestionHandler) authorize(c *gin.Context) bool {
	if h.updateSecret == "" {
		h.log.Warn("Ingestion endpoint refused, no update secret configured")
		response.RespondError(c, http.StatusForbidden, "forbidden", apperrors.ErrUnauthorized)
		return false
	}
	provided := c.GetHeader("X-Update-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.updateSecret)) != 1 {
		response.RespondError(c, http.StatusForbidden, "forbidden", apperrors.ErrUnauthorized)
		return false
	}
	return true
}

// POST /api/trigger-update
func (h *IngestionHandler) TriggerUpdate(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	if err := h.ingestion.TriggerUpdate(h.windowDays); err != nil {
		if errors.Is(err, apperrors.ErrRunInProgress) {
			response.RespondError(c, http.StatusConflict, "run_in_progress", err)
			return
		}
		h.log.Error("Failed to start ingestion run", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "trigger_failed", errors.New("failed to start update"))
		return
	}

	response.RespondAccepted(c, gin.H{"status": "update started"})
}

// GET /api/ingestion-runs?limit=n
func (h *IngestionHandler) ListRuns(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	runs, err := h.ingestion.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list ingestion runs", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "list_runs_failed", errors.New("failed to list runs"))
		return
	}

	response.RespondOK(c, gin.H{"runs": runs})
}
