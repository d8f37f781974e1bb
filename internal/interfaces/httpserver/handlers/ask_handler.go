package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"waves-server/internal/interfaces/httpserver/requests"
	"waves-server/internal/interfaces/httpserver/responses"
	"waves-server/internal/utils/platformerrors"
)

// AskHandler answers questions from the top search result.
type AskHandler struct {
	service  AskService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAskHandler(service AskService, validate *validator.Validate, log zerolog.Logger) *AskHandler {
	return &AskHandler{
		service:  service,
		validate: validate,
		log:      log.With().Str("handler", "ask").Logger(),
	}
}

// Ask handles POST /api/ask
func (h *AskHandler) Ask(c *gin.Context) {
	var req requests.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "")
		return
	}
	req.Normalize()
	if err := h.validate.Struct(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err), "")
		return
	}

	answer, err := h.service.Ask(c.Request.Context(), req.Question)
	if err != nil {
		responses.HandleError(c, err, "search failed")
		return
	}

	c.JSON(http.StatusOK, answer)
}
