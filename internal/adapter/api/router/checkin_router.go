package router

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/handler"
	"securehire/internal/adapter/api/middleware"
	"securehire/internal/domain/entity"
)

func SetupCheckInRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, gateMiddleware *middleware.ProfileGateMiddleware) {
	checkInHandler := handler.GetCheckInHandler()

	checkins := protectedGroup(e, "/v1/checkins", authMiddleware,
		middleware.RequireRole(entity.RoleJobSeeker),
		gateMiddleware.RequireCompleteProfile,
	)
	checkins.POST("", checkInHandler.Scan)
}
