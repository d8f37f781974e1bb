package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"waves-server/internal/domain/user"
	"waves-server/internal/interfaces/httpserver/middlewares"
	"waves-server/internal/interfaces/httpserver/requests"
	"waves-server/internal/interfaces/httpserver/responses"
	"waves-server/internal/utils/platformerrors"
)

// SettingsHandler exposes the desktop personalisation of the current user.
type SettingsHandler struct {
	users    UserService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewSettingsHandler(users UserService, validate *validator.Validate, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		users:    users,
		validate: validate,
		log:      log.With().Str("handler", "settings").Logger(),
	}
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	u, ok := middlewares.UserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}
	c.JSON(http.StatusOK, user.SettingsOf(u))
}

// Update handles PUT /api/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	u, ok := middlewares.UserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}

	var req requests.UpdateSettingsRequest
	if !bindJSON(c, h.validate, &req) {
		return
	}

	settings, err := h.users.UpdateSettings(c.Request.Context(), u, user.SettingsUpdate{
		DisplayName: req.DisplayName,
		Wallpaper:   req.Wallpaper,
		Settings:    req.Settings,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update settings")
		return
	}

	h.log.Debug().Str("username", u.Username).Int("keys", len(req.Settings)).Msg("settings updated")
	c.JSON(http.StatusOK, settings)
}
