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

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	users    UserService
	validate *validator.Validate
	log      zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users UserService, validate *validator.Validate, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		validate: validate,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req requests.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.users.Register(c.Request.Context(), user.RegisterParams{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to register")
		return
	}

	c.JSON(http.StatusCreated, responses.NewSessionResponse(session))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req requests.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		responses.HandleError(c, err, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, responses.NewSessionResponse(session))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	u, ok := middlewares.UserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}

	if err := h.users.Logout(c.Request.Context(), u, middlewares.TokenFromContext(c)); err != nil {
		responses.HandleError(c, err, "failed to log out")
		return
	}

	c.JSON(http.StatusOK, responses.StatusResponse{Status: "logged_out"})
}

// Me handles GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := middlewares.UserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}
	c.JSON(http.StatusOK, u.Profile())
}

func (h *AuthHandler) bind(c *gin.Context, req any) bool {
	return bindJSON(c, h.validate, req)
}

// bindJSON decodes and validates a JSON body, answering 400 on failure.
func bindJSON(c *gin.Context, validate *validator.Validate, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "")
		return false
	}
	if err := validate.Struct(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, requests.ValidationMessage(err), "")
		return false
	}
	return true
}
