package router

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/handler"
	"securehire/internal/adapter/api/middleware"
	"securehire/internal/domain/entity"
)

func SetupJobRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, gateMiddleware *middleware.ProfileGateMiddleware) {
	jobHandler := handler.GetJobHandler()

	jobs := protectedGroup(e, "/v1/jobs", authMiddleware)
	jobs.GET("", jobHandler.ListJobs)
	jobs.GET("/:id", jobHandler.GetJob)

	// Company routes
	jobs.POST("", jobHandler.PostJob,
		middleware.RequireRole(entity.RoleCompany),
		gateMiddleware.RequireCompleteProfile,
	)
	jobs.GET("/:id/checkin-qr", jobHandler.CheckInQRCode, middleware.RequireRole(entity.RoleCompany))

	// Job seeker routes
	jobs.POST("/:id/apply", jobHandler.Apply,
		middleware.RequireRole(entity.RoleJobSeeker),
		gateMiddleware.RequireCompleteProfile,
	)
}
