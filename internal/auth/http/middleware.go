// Package http provides admin authentication handlers and middleware.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/ticketbox/internal/auth/domain"
	authUsecase "github.com/allisson/ticketbox/internal/auth/usecase"
	"github.com/allisson/ticketbox/internal/httputil"
)

// sessionContextKey is the gin context key holding the admin session.
const sessionContextKey = "admin_session"

// SessionMiddleware authenticates the Bearer token and stores the admin
// session in the request context. Requests without a live session are
// rejected before reaching the handler.
func SessionMiddleware(auth authUsecase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			httputil.HandleErrorGin(c, authDomain.ErrInvalidSession, logger)
			c.Abort()
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// SessionFromContext returns the admin session stored by SessionMiddleware.
func SessionFromContext(c *gin.Context) (*authDomain.AdminSession, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*authDomain.AdminSession)
	return session, ok
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
