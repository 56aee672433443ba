package handler

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/middleware"
	"securehire/internal/usecase"
	"securehire/pkg/response"
)

type SessionHandler struct {
	sessionUseCase *usecase.SessionUseCase
}

func NewSessionHandler(sessionUseCase *usecase.SessionUseCase) *SessionHandler {
	return &SessionHandler{
		sessionUseCase: sessionUseCase,
	}
}

func (h *SessionHandler) Me(c echo.Context) error {
	return response.Success(c, map[string]string{
		"uid":  middleware.UserID(c),
		"role": string(middleware.UserRole(c)),
	})
}

func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.sessionUseCase.Logout(c.Request().Context(), middleware.UserID(c)); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"status": "logged_out"})
}
