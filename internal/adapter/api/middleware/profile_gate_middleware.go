package middleware

import (
	"github.com/labstack/echo/v4"

	"securehire/internal/usecase"
	"securehire/pkg/errors"
	"securehire/pkg/response"
)

type ProfileGateMiddleware struct {
	gate *usecase.ProfileGate
}

func NewProfileGateMiddleware(gate *usecase.ProfileGate) *ProfileGateMiddleware {
	return &ProfileGateMiddleware{gate: gate}
}

// RequireCompleteProfile answers 428 PROFILE_INCOMPLETE with the missing fields instead
// of running the handler. The client shows its completion prompt on that code.
func (m *ProfileGateMiddleware) RequireCompleteProfile(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var handlerErr error
		result, err := m.gate.Guard(c.Request().Context(), UserID(c), UserRole(c), func() error {
			handlerErr = next(c)
			return nil
		})
		if err != nil {
			return response.Error(c, err)
		}
		if result.ModalShown {
			return response.Error(c, errors.ProfileIncomplete(result.Missing))
		}
		return handlerErr
	}
}
