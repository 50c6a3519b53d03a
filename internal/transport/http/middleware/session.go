package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	appsvc "legalai-assistant/internal/app"
	"legalai-assistant/internal/model"
	"legalai-assistant/internal/transport/http/response"
)

const ContextSessionKey = "session"

// SessionAuth resolves the bearer token to a live session. No session, no
// conversation view: API callers get 401 and the pages redirect to /auth.
func SessionAuth(authService *appsvc.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		session, err := authService.CurrentSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, appsvc.ErrSessionNotFound) {
				response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			} else {
				response.Error(c, 500, response.CodeInternalServer, "resolve session failed")
			}
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

func SessionFromContext(c *gin.Context) (*model.Session, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*model.Session)
	return session, ok
}
