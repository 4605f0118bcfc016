package middleware

// identity.go defines helper functions shared across middleware files.
// Currently it provides a user identifier extraction function that reads
// the "user_id" value injected by JWTAuth. When no user is authenticated
// "anon" is returned so unauthenticated traffic still gets a stable
// rate-limit key.

import (
	"github.com/labstack/echo/v4"
)

// currentUserID extracts the authenticated user identifier from context.
// It returns "anon" when no user is authenticated or the value has an
// unexpected type.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if v := c.Get("userID"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
