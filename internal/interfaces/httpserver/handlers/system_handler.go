package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"waves-server/internal/config"
	"waves-server/internal/interfaces/httpserver/responses"
)

const maxDiagnosticNamespaces = 10

// SystemHandler serves the informational and health endpoints.
type SystemHandler struct {
	cfg   *config.Config
	store StoreProbe
	log   zerolog.Logger
}

func NewSystemHandler(cfg *config.Config, store StoreProbe, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		cfg:   cfg,
		store: store,
		log:   log.With().Str("handler", "system").Logger(),
	}
}

// Root handles GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, responses.MessageResponse{Message: "Waves proxy search backend running"})
}

// Hello handles GET /api/hello
func (h *SystemHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, responses.MessageResponse{Message: "Hello from the backend API!"})
}

// Diagnostics handles GET /test. Store failures are reported in the body,
// the endpoint itself always answers 200.
func (h *SystemHandler) Diagnostics(c *gin.Context) {
	resp := responses.DiagnosticsResponse{
		Backend:          "Running",
		Database:         "Not Available",
		DatabaseURL:      setOrNot(h.cfg.RedisURL),
		DatabaseName:     setOrNot(h.cfg.DatabaseName),
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	ctx := c.Request.Context()
	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("document store ping failed")
		resp.Database = "Error: " + truncate(err.Error(), 50)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Database = "Available"
	resp.ConnectionStatus = "Connected"

	namespaces, err := h.store.Namespaces(ctx, maxDiagnosticNamespaces)
	if err != nil {
		h.log.Warn().Err(err).Msg("listing document store namespaces failed")
		resp.Database = "Connected but Error: " + truncate(err.Error(), 50)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Database = "Connected & Working"
	resp.Collections = namespaces

	c.JSON(http.StatusOK, resp)
}

// Healthz handles GET /healthz
func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": h.cfg.ServiceName})
}

// Readyz handles GET /readyz
func (h *SystemHandler) Readyz(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "document store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func setOrNot(value string) string {
	if value == "" {
		return "Not Set"
	}
	return "Set"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
