package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinemacore/booking/internal/apperr"
)

// respondErr translates an application error into the JSON error shape
// every endpoint shares: {"error": message, "context": {...}}.
func respondErr(c echo.Context, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		body := echo.Map{"error": e.Message}
		if len(e.Context) > 0 {
			body["context"] = e.Context
		}
		return c.JSON(apperr.Status(err), body)
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// currentUserID reads the authenticated user id injected by the JWT
// middleware.  The subject claim arrives as a string or a JSON number
// depending on the issuer, so both are accepted.
func currentUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return 0, echo.ErrUnauthorized
		}
		return id, nil
	case float64:
		if v < 1 {
			return 0, echo.ErrUnauthorized
		}
		return uint64(v), nil
	default:
		return 0, echo.ErrUnauthorized
	}
}

// isAdmin reports whether the JWT role claim marks the caller an admin.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid "+name, map[string]any{name: c.Param(name)})
	}
	return id, nil
}
