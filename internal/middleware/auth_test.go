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

	"mirrorcaps/internal/domain"
)

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func newAuthContext(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &domain.User{ID: uuid.New(), Email: "user@example.com", IsAdmin: true}
	token, err := GenerateJWT(user)
	require.NoError(t, err)

	c, rec := newAuthContext(t, token)
	err = AuthMiddleware(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	actor, err := GetActor(c)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, user.Email, actor.Email)
	assert.True(t, actor.IsAdmin)
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	c, _ := newAuthContext(t, "")
	err := AuthMiddleware(okHandler)(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthMiddlewareTokenFromCookie(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &domain.User{ID: uuid.New(), Email: "user@example.com"}
	token, err := GenerateJWT(user)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, AuthMiddleware(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	user := &domain.User{ID: uuid.New(), Email: "user@example.com"}
	token, err := GenerateJWT(user)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "a-different-secret")
	c, _ := newAuthContext(t, token)
	err = AuthMiddleware(okHandler)(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	claims := &JWTClaims{
		UserID: uuid.New(),
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	c, _ := newAuthContext(t, token)
	err = AuthMiddleware(okHandler)(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAdminMiddleware(t *testing.T) {
	e := echo.New()

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("actor", domain.Actor{ID: uuid.New(), IsAdmin: true})

		require.NoError(t, AdminMiddleware(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("actor", domain.Actor{ID: uuid.New()})

		err := AdminMiddleware(okHandler)(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})
}
