package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, sub, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub, "role": role})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runProtected(t *testing.T, authHeader string, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id"), "role": c.Get("role")})
	}
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuthRejectsMissingAndMalformedTokens(t *testing.T) {
	rec := runProtected(t, "", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = runProtected(t, "Bearer not-a-token", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = runProtected(t, "Bearer "+signToken(t, "wrong-secret", "7", "customer"), JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInjectsClaims(t *testing.T) {
	rec := runProtected(t, "Bearer "+signToken(t, testSecret, "7", "customer"), JWTAuth(testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"7"`)
	assert.Contains(t, rec.Body.String(), `"role":"customer"`)
}

func TestRequireRoleEnforcesRoleClaim(t *testing.T) {
	customer := "Bearer " + signToken(t, testSecret, "7", "customer")
	admin := "Bearer " + signToken(t, testSecret, "1", "admin")

	rec := runProtected(t, customer, JWTAuth(testSecret), RequireRole("admin"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = runProtected(t, admin, JWTAuth(testSecret), RequireRole("admin"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runProtected(t, customer, JWTAuth(testSecret), RequireRole("admin", "customer"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
