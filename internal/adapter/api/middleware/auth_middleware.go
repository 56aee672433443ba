package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"securehire/internal/domain/entity"
	"securehire/pkg/errors"
	"securehire/pkg/response"
)

const (
	ContextUID  = "uid"
	ContextRole = "role"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.IdentityRecord, error)
}

type AuthMiddleware struct {
	sessions Authenticator
}

func NewAuthMiddleware(sessions Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
	}
}

// Authenticate resolves the Firebase ID token to the caller's uid and role. Browsers
// cannot set headers on a websocket handshake, so the token may also come as ?token=.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		idToken, err := bearerToken(c)
		if err != nil {
			return response.Error(c, err)
		}

		record, err := m.sessions.Authenticate(c.Request().Context(), idToken)
		if err != nil {
			return response.Error(c, err)
		}

		c.Set(ContextUID, record.ID)
		c.Set(ContextRole, record.Role)

		return next(c)
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}

// UserID is the authenticated caller's uid, or "" outside Authenticate.
func UserID(c echo.Context) string {
	uid, _ := c.Get(ContextUID).(string)
	return uid
}

func UserRole(c echo.Context) entity.Role {
	role, _ := c.Get(ContextRole).(entity.Role)
	return role
}
