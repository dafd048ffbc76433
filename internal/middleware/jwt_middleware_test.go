package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, secret string, userID uuid.UUID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		Email:  "a@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authedContext(token string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestTryGetClaimsVerifiesAgainstConfiguredSecret(t *testing.T) {
	userID := uuid.New()
	SetSecret("test-secret")

	cl := TryGetClaimsFromAuthHeader(authedContext(mintToken(t, "test-secret", userID, "customer")))
	require.NotNil(t, cl)
	assert.Equal(t, userID, cl.UserID)
	assert.Equal(t, "a@example.com", cl.Email)

	// A token signed with another key is a guest, not an error.
	assert.Nil(t, TryGetClaimsFromAuthHeader(authedContext(mintToken(t, "wrong-secret", userID, "customer"))))
	assert.Nil(t, TryGetClaimsFromAuthHeader(authedContext("")))
}

func TestJWTMiddlewareAttachesClaims(t *testing.T) {
	userID := uuid.New()
	SetSecret("test-secret")

	var got *Claims
	handler := JWTMiddleware()(func(c echo.Context) error {
		got = GetClaims(c)
		return c.NoContent(http.StatusOK)
	})

	c := authedContext(mintToken(t, "test-secret", userID, "admin"))
	require.NoError(t, handler(c))
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "admin", got.Role)
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	SetSecret("test-secret")

	handler := JWTMiddleware()(func(c echo.Context) error {
		t.Fatal("handler must not run without a token")
		return nil
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
