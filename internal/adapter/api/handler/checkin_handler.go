package handler

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/middleware"
	"securehire/internal/domain/entity"
	"securehire/internal/usecase"
	"securehire/pkg/response"
)

type CheckInHandler struct {
	checkInUseCase *usecase.CheckInUseCase
	notifier       *usecase.Notifier
}

func NewCheckInHandler(checkInUseCase *usecase.CheckInUseCase, notifier *usecase.Notifier) *CheckInHandler {
	return &CheckInHandler{
		checkInUseCase: checkInUseCase,
		notifier:       notifier,
	}
}

type scanRequest struct {
	Payload   string   `json:"payload" validate:"required,max=512"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// Scan records a scanned check-in code. The first scan checks the guard in, the next
// one checks them out.
func (h *CheckInHandler) Scan(c echo.Context) error {
	uid := middleware.UserID(c)

	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	entry, err := h.checkInUseCase.Scan(c.Request().Context(), uid, usecase.ScanInput{
		Payload:   req.Payload,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		h.notifier.Failure(uid, err)
		return response.Error(c, err)
	}

	msg := "Checked in"
	if entry.Kind == entity.LogbookCheckOut {
		msg = "Checked out"
	}
	h.notifier.Toast(uid, entity.ToastSuccess, msg)
	return response.Created(c, entry)
}
