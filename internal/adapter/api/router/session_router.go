package router

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/handler"
	"securehire/internal/adapter/api/middleware"
)

func SetupSessionRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	sessionHandler := handler.GetSessionHandler()

	session := protectedGroup(e, "/v1/session", authMiddleware)
	session.GET("", sessionHandler.Me)
	session.POST("/logout", sessionHandler.Logout)
}
