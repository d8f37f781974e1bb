package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"waves-server/internal/domain/search"
	"waves-server/internal/infrastructure/metrics"
	"waves-server/internal/interfaces/httpserver/requests"
	"waves-server/internal/interfaces/httpserver/responses"
	"waves-server/internal/utils/platformerrors"
)

// SearchHandler exposes the proxied web search.
type SearchHandler struct {
	service  SearchService
	validate *validator.Validate
	log      zerolog.Logger
}

// NewSearchHandler constructs the handler.
func NewSearchHandler(service SearchService, validate *validator.Validate, log zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		service:  service,
		validate: validate,
		log:      log.With().Str("handler", "search").Logger(),
	}
}

// Search handles GET /api/search?q=<query>&limit=<n>
func (h *SearchHandler) Search(c *gin.Context) {
	var query requests.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		metrics.RecordSearch("invalid", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "limit must be an integer", "")
		return
	}
	if err := h.validate.Struct(query); err != nil {
		metrics.RecordSearch("invalid", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err), "")
		return
	}

	limit := search.DefaultLimit
	if query.Limit != nil {
		limit = *query.Limit
	}

	envelope, err := h.service.Search(c.Request.Context(), query.Q, limit)
	if err != nil {
		metrics.RecordSearch("error", 0)
		responses.HandleError(c, err, "search failed")
		return
	}

	metrics.RecordSearch("success", envelope.Count)
	c.JSON(http.StatusOK, envelope)
}
