package router

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/handler"
	"securehire/internal/adapter/api/middleware"
	"securehire/internal/infrastructure/ratelimit"
)

// SetupContactRouter exposes the sidebar contact list of the signed-in user.
func SetupContactRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	contactHandler := handler.GetContactHandler()

	contacts := protectedGroup(e, "/v1/contacts", authMiddleware)
	contacts.GET("", contactHandler.ListContacts)
	contacts.POST("/next", contactHandler.NextBatch, middleware.RateLimit(limiter, "fetch_contact"))
	contacts.POST("/scroll", contactHandler.Scroll, middleware.RateLimit(limiter, "fetch_contact"))
	contacts.POST("/reset", contactHandler.ResetSession)
}
