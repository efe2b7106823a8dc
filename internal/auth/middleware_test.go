package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gatekeeper/internal/apperr"
	"gatekeeper/internal/user"
	"gatekeeper/internal/user/usertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newGate(t *testing.T) (*Gate, *usertest.Store, *user.User) {
	t.Helper()
	store := usertest.NewStore()
	u := &user.User{Email: "alice@example.com", PasswordHash: "hash", FullName: "Alice"}
	require.NoError(t, store.Create(context.Background(), u))
	return &Gate{JWT: NewJWT("s3cret"), Users: store}, store, u
}

func TestGate_Authenticate(t *testing.T) {
	g, _, u := newGate(t)
	tok, err := g.JWT.Sign(u.ID)
	require.NoError(t, err)

	got, err := g.Authenticate(context.Background(), "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestGate_NoToken(t *testing.T) {
	g, store, _ := newGate(t)
	before := store.Calls

	for _, h := range []string{"", "Bearer", "Bearer   ", "abc"} {
		_, err := g.Authenticate(context.Background(), h)
		assert.ErrorIs(t, err, ErrNoToken, h)
	}
	assert.Equal(t, before, store.Calls)
}

func TestGate_InvalidToken(t *testing.T) {
	g, store, u := newGate(t)
	before := store.Calls

	_, err := g.Authenticate(context.Background(), "Bearer garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	for _, h := range []string{"Token abc.def.ghi", "Basic Zm9vOmJhcg=="} {
		_, err = g.Authenticate(context.Background(), h)
		assert.ErrorIs(t, err, ErrInvalidToken, h)
	}

	expired, err := g.JWT.WithClock(func() time.Time { return time.Now().Add(-TokenTTL - time.Minute) }).Sign(u.ID)
	require.NoError(t, err)
	_, err = g.Authenticate(context.Background(), "Bearer "+expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	assert.Equal(t, before, store.Calls)
}

func TestGate_LowercaseScheme(t *testing.T) {
	g, _, u := newGate(t)
	tok, err := g.JWT.Sign(u.ID)
	require.NoError(t, err)

	got, err := g.Authenticate(context.Background(), "bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestGate_UserNotFound(t *testing.T) {
	g, store, u := newGate(t)
	tok, err := g.JWT.Sign(u.ID)
	require.NoError(t, err)

	store.Delete(u.ID)

	_, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGate_StoreFailureIsInternal(t *testing.T) {
	g, store, u := newGate(t)
	tok, err := g.JWT.Sign(u.ID)
	require.NoError(t, err)

	store.Err = errors.New("db down")

	_, err = g.Authenticate(context.Background(), "Bearer "+tok)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.From(err).Kind)
}

func TestRequireAuth(t *testing.T) {
	g, _, u := newGate(t)
	tok, err := g.JWT.Sign(u.ID)
	require.NoError(t, err)

	var seen *user.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := RequireAuth(g, zaptest.NewLogger(t))(next)

	cases := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"missing", "", http.StatusUnauthorized, "No token provided"},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, "Invalid token"},
		{"ok", "Bearer " + tok, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/details", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			if tc.msg == "" {
				require.NotNil(t, seen)
				assert.Equal(t, u.ID, seen.ID)
				return
			}
			assert.Nil(t, seen)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.msg, body["message"])
		})
	}
}
