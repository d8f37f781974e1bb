package interfaces

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"waves-server/internal/config"
	"waves-server/internal/domain/ask"
	"waves-server/internal/domain/search"
	"waves-server/internal/domain/user"
	"waves-server/internal/infrastructure/database"
	"waves-server/internal/interfaces/httpserver"
	"waves-server/internal/interfaces/httpserver/handlers"
	"waves-server/internal/interfaces/httpserver/middlewares"
	"waves-server/internal/interfaces/httpserver/requests"
	"waves-server/internal/interfaces/httpserver/routes"
	"waves-server/internal/interfaces/httpserver/routes/mcp"
)

// InterfacesProvider provides all interface layer dependencies
var InterfacesProvider = wire.NewSet(
	requests.NewValidator,
	handlers.NewProvider,
	wire.Bind(new(handlers.SearchService), new(*search.SearchService)),
	wire.Bind(new(handlers.UserService), new(*user.Service)),
	wire.Bind(new(handlers.AskService), new(*ask.Service)),
	wire.Bind(new(handlers.StoreProbe), new(*database.StoreProbe)),

	ProvideAuthMiddleware,
	wire.Bind(new(middlewares.Authenticator), new(*user.Service)),

	mcp.NewSearchMCP,
	wire.Bind(new(mcp.SearchService), new(*search.SearchService)),
	wire.Bind(new(mcp.AskService), new(*ask.Service)),
	ProvideMCPRoute,

	routes.NewProvider,
	httpserver.New,
)

func ProvideAuthMiddleware(auth middlewares.Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return middlewares.BearerAuth(auth, log)
}

// ProvideMCPRoute returns nil when MCP is disabled, which leaves /v1/mcp unmounted.
func ProvideMCPRoute(cfg *config.Config, searchMCP *mcp.SearchMCP) *mcp.MCPRoute {
	if !cfg.MCPEnabled {
		return nil
	}
	return mcp.NewMCPRoute(cfg, searchMCP)
}
