package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platewatch/platewatch-backend/internal/http/response"
	apperrors "github.com/platewatch/platewatch-backend/internal/pkg/errors"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
	"github.com/platewatch/platewatch-backend/internal/services"
)

type SearchHandler struct {
	log    *logger.Logger
	search services.SearchService
}

func NewSearchHandler(log *logger.Logger, search services.SearchService) *SearchHandler {
	return &SearchHandler{log: log.With("handler", "SearchHandler"), search: search}
}

// GET /api/search?name=<term>
func (h *SearchHandler) Search(c *gin.Context) {
	term := c.Query("name")

	results, err := h.search.Search(c.Request.Context(), term)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "missing_name", errors.New("query parameter 'name' is required"))
			return
		}
		h.log.Error("Search failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "search_failed", errors.New("search temporarily unavailable"))
		return
	}

	// The response body is the bare array; existing clients parse it directly.
	response.RespondOK(c, results)
}
