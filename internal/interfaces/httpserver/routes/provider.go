package routes

import (
	"github.com/gin-gonic/gin"

	"waves-server/internal/interfaces/httpserver/handlers"
	"waves-server/internal/interfaces/httpserver/routes/mcp"
	v1 "waves-server/internal/interfaces/httpserver/routes/v1"
)

// Provider coordinates all route registrations.
type Provider struct {
	V1  *v1.Routes
	MCP *mcp.MCPRoute
}

// NewProvider constructs the route provider. A nil mcpRoute leaves /v1/mcp unmounted.
func NewProvider(handlerProvider *handlers.Provider, auth gin.HandlerFunc, mcpRoute *mcp.MCPRoute) *Provider {
	return &Provider{
		V1:  v1.NewRoutes(handlerProvider, auth),
		MCP: mcpRoute,
	}
}

// Register attaches all available routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.V1.Register(engine)
	if p.MCP != nil {
		p.MCP.RegisterRouter(engine.Group("/v1"))
	}
}
