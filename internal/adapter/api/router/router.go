package router

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/handler"
	"securehire/internal/adapter/api/middleware"
	"securehire/internal/infrastructure/ratelimit"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	gateMiddleware *middleware.ProfileGateMiddleware,
	limiter *ratelimit.RateLimiter,
	wsHandler *handler.WebSocketHandler,
) {
	SetupSessionRouter(e, authMiddleware)
	SetupContactRouter(e, authMiddleware, limiter)
	SetupChatRouter(e, authMiddleware, gateMiddleware)
	SetupProfileRouter(e, authMiddleware, limiter)
	SetupJobRouter(e, authMiddleware, gateMiddleware)
	SetupCheckInRouter(e, authMiddleware, gateMiddleware)
	SetupWebSocketRouter(e, wsHandler, authMiddleware)
	SetupHealthRouter(e)
}
