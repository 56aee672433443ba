package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// LimitParam reads ?limit= and clamps it to (0, max], falling back to def.
func LimitParam(c echo.Context, def, max int) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
