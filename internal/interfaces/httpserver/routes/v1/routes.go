package v1

import (
	"github.com/gin-gonic/gin"

	"waves-server/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates the /api route registration.
type Routes struct {
	handlers *handlers.Provider
	auth     gin.HandlerFunc
}

// NewRoutes builds the route registrar. auth guards the session routes.
func NewRoutes(handlerProvider *handlers.Provider, auth gin.HandlerFunc) *Routes {
	return &Routes{
		handlers: handlerProvider,
		auth:     auth,
	}
}

// Register attaches all routes under the /api prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/api")
	group.GET("/hello", r.handlers.System.Hello)
	group.GET("/search", r.handlers.Search.Search)

	registerAuthRoutes(group, r.handlers.Auth)

	protected := group.Group("", r.auth)
	registerSessionRoutes(protected, r.handlers)
}

func registerAuthRoutes(router gin.IRoutes, handler *handlers.AuthHandler) {
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
}

func registerSessionRoutes(router gin.IRoutes, h *handlers.Provider) {
	router.POST("/auth/logout", h.Auth.Logout)
	router.GET("/me", h.Auth.Me)
	router.GET("/settings", h.Settings.Get)
	router.PUT("/settings", h.Settings.Update)
	router.POST("/ask", h.Ask.Ask)
}
