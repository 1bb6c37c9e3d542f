package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking-api/internal/config"
	"github.com/iliyamo/event-booking-api/internal/model"
	"github.com/iliyamo/event-booking-api/internal/utils"
)

const authTestSecret = "auth-handler-test-secret"

type fakeUserStore struct {
	users map[uint64]model.User
}

func (f *fakeUserStore) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	return 0, sql.ErrConnDone
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

// fakeTokenStore records revocations so tests can assert which logout mode
// ran.
type fakeTokenStore struct {
	valid         map[string]uint64 // token hash -> user id
	revokedHashes []string
	revokedAllFor []uint64
	storedRefresh int
}

func (f *fakeTokenStore) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.storedRefresh++
	return nil
}

func (f *fakeTokenStore) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	uid, ok := f.valid[tokenHash]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return uid, nil
}

func (f *fakeTokenStore) RevokeByHash(ctx context.Context, tokenHash string) error {
	f.revokedHashes = append(f.revokedHashes, tokenHash)
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(ctx context.Context, userID uint64) error {
	f.revokedAllFor = append(f.revokedAllFor, userID)
	return nil
}

func newAuthHandler(tokens *fakeTokenStore) *AuthHandler {
	cfg := config.Config{JWTSecret: authTestSecret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	return NewAuthHandler(cfg, &fakeUserStore{users: map[uint64]model.User{}}, tokens)
}

func logoutRequest(t *testing.T, h *AuthHandler, body, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(http.MethodPost, "/v1/auth/logout", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h.Logout(e.NewContext(req, rec)))
	return rec
}

func TestLogout(t *testing.T) {
	t.Run("bearer token with empty body revokes all sessions", func(t *testing.T) {
		tokens := &fakeTokenStore{valid: map[string]uint64{}}
		h := newAuthHandler(tokens)

		access, err := utils.NewAccessToken(authTestSecret, 42, model.RoleUser, 15)
		require.NoError(t, err)

		rec := logoutRequest(t, h, "", "Bearer "+access.Token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []uint64{42}, tokens.revokedAllFor)
		assert.Empty(t, tokens.revokedHashes)
	})

	t.Run("body refresh token revokes only that session", func(t *testing.T) {
		raw := "some-refresh-token"
		hash := utils.HashRefreshRaw(raw)
		tokens := &fakeTokenStore{valid: map[string]uint64{hash: 7}}
		h := newAuthHandler(tokens)

		rec := logoutRequest(t, h, `{"refresh_token":"`+raw+`"}`, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []string{hash}, tokens.revokedHashes)
		assert.Empty(t, tokens.revokedAllFor)
	})

	t.Run("body token wins when both are supplied", func(t *testing.T) {
		raw := "session-to-end"
		hash := utils.HashRefreshRaw(raw)
		tokens := &fakeTokenStore{valid: map[string]uint64{hash: 7}}
		h := newAuthHandler(tokens)

		access, err := utils.NewAccessToken(authTestSecret, 7, model.RoleUser, 15)
		require.NoError(t, err)

		rec := logoutRequest(t, h, `{"refresh_token":"`+raw+`"}`, "Bearer "+access.Token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []string{hash}, tokens.revokedHashes)
		assert.Empty(t, tokens.revokedAllFor)
	})

	t.Run("unknown body token is rejected", func(t *testing.T) {
		tokens := &fakeTokenStore{valid: map[string]uint64{}}
		h := newAuthHandler(tokens)

		rec := logoutRequest(t, h, `{"refresh_token":"never-issued"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, tokens.revokedHashes)
	})

	t.Run("no credentials at all", func(t *testing.T) {
		tokens := &fakeTokenStore{valid: map[string]uint64{}}
		h := newAuthHandler(tokens)

		rec := logoutRequest(t, h, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, tokens.revokedAllFor)
	})

	t.Run("bearer signed with another secret does not revoke", func(t *testing.T) {
		tokens := &fakeTokenStore{valid: map[string]uint64{}}
		h := newAuthHandler(tokens)

		access, err := utils.NewAccessToken("some-other-secret", 42, model.RoleUser, 15)
		require.NoError(t, err)

		rec := logoutRequest(t, h, "", "Bearer "+access.Token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, tokens.revokedAllFor)
	})
}

func TestRefreshRotatesToken(t *testing.T) {
	raw := "rotating-refresh"
	hash := utils.HashRefreshRaw(raw)
	tokens := &fakeTokenStore{valid: map[string]uint64{hash: 9}}
	h := newAuthHandler(tokens)
	h.Users = &fakeUserStore{users: map[uint64]model.User{
		9: {ID: 9, Email: "nine@example.com", Role: model.RoleUser, IsActive: true},
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", strings.NewReader(`{"refresh_token":"`+raw+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Refresh(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{hash}, tokens.revokedHashes, "old token must be revoked")
	assert.Equal(t, 1, tokens.storedRefresh, "a new refresh token must be stored")
}
