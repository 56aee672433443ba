package router

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/middleware"
)

// protectedGroup returns a group under prefix that requires a signed-in user.
func protectedGroup(e *echo.Echo, prefix string, authMiddleware *middleware.AuthMiddleware, m ...echo.MiddlewareFunc) *echo.Group {
	g := e.Group(prefix)
	g.Use(authMiddleware.Authenticate)
	g.Use(m...)
	return g
}
