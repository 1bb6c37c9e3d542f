package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking-api/internal/utils"
)

const testSecret = "auth-test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(next)(c)
	require.NoError(t, err)
	return rec
}

func TestJWTAuth(t *testing.T) {
	t.Run("valid token reaches handler with identity in context", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, 42, "USER", 5)
		require.NoError(t, err)

		var gotUser, gotRole any
		rec := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token, func(c echo.Context) error {
			gotUser = c.Get("user_id")
			gotRole = c.Get("role")
			return c.NoContent(http.StatusOK)
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		// JWT numbers decode as float64.
		assert.Equal(t, float64(42), gotUser)
		assert.Equal(t, "USER", gotRole)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := doRequest(t, JWTAuth(testSecret), "", func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		rec := doRequest(t, JWTAuth(testSecret), "Bearer not.a.jwt", func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		tok, err := utils.NewAccessToken("other-secret", 42, "USER", 5)
		require.NoError(t, err)

		rec := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token, func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, 42, "USER", -5)
		require.NoError(t, err)

		rec := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token, func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	run := func(t *testing.T, role any, allowed ...string) *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		err := RequireRole(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
		require.NoError(t, err)
		return rec
	}

	assert.Equal(t, http.StatusOK, run(t, "ADMIN", "ADMIN").Code)
	assert.Equal(t, http.StatusOK, run(t, "USER", "USER", "ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, run(t, "USER", "ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, run(t, nil, "ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, run(t, 7, "ADMIN").Code)
}
