package ginserver

import (
	"errors"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"signature/internal/app/services/auth"
	domainauth "signature/internal/domain/auth"
)

// AuthMiddleware resolves a bearer token and attaches the principal to the
// request context. Requests without a valid token continue anonymously; the
// bus authorization middleware rejects admin messages for them.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	session, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	ctx := auth.WithPrincipal(c.Request.Context(), auth.Principal{
		Subject: session.Subject,
		Role:    session.Role,
		Token:   token,
	})
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
