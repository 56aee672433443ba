package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"securehire/internal/adapter/api/handler"
	"securehire/internal/adapter/api/middleware"
	"securehire/internal/infrastructure/ratelimit"
)

func SetupProfileRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	profileHandler := handler.GetProfileHandler()

	profile := protectedGroup(e, "/v1/profile", authMiddleware)
	profile.GET("", profileHandler.GetProfile)
	profile.PUT("", profileHandler.UpdateProfile)
	profile.GET("/status", profileHandler.GetCompletion)
	profile.POST("/documents", profileHandler.UploadDocument,
		echomw.BodyLimit("6M"),
		middleware.RateLimit(limiter, "upload"),
	)
}
