package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"waves-server/internal/domain/user"
	"waves-server/internal/interfaces/httpserver/responses"
)

const (
	userContextKey  = "user"
	tokenContextKey = "session_token"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// BearerAuth requires "Authorization: Bearer <token>" naming an active session.
func BearerAuth(auth Authenticator, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug().
				Err(err).
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			responses.HandleError(c, err, "unauthorized")
			return
		}

		c.Set(userContextKey, u)
		c.Set(tokenContextKey, token)
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <t>" header.
// The scheme is matched case-insensitively.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(c *gin.Context) (*user.User, bool) {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	u, ok := val.(*user.User)
	return u, ok
}

// TokenFromContext returns the bearer token of the authenticated request.
func TokenFromContext(c *gin.Context) string {
	return c.GetString(tokenContextKey)
}
