package middleware

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/domain/entity"
	"securehire/pkg/errors"
	"securehire/pkg/response"
)

// RequireRole lets only callers with one of roles through. It must run after Authenticate.
func RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if UserID(c) == "" {
				return response.Error(c, errors.Unauthorized("Authentication required", nil))
			}

			role := UserRole(c)
			for _, r := range roles {
				if r == role {
					return next(c)
				}
			}
			return response.Error(c, errors.Forbidden("This action is not available for your account type", nil))
		}
	}
}
