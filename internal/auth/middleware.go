package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gatekeeper/internal/apperr"
	"gatekeeper/internal/http/respond"
	"gatekeeper/internal/user"

	"go.uber.org/zap"
)

type ctxKey string

const userKey ctxKey = "user"

var (
	ErrNoToken      = apperr.Authentication("No token provided")
	ErrInvalidToken = apperr.Authentication("Invalid token")
	ErrUserNotFound = apperr.Authentication("User not found")
)

func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey).(*user.User)
	return u, ok && u != nil
}

// UserFinder is the part of the credential store the gate needs.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// Gate resolves a bearer token to a stored user: extract, verify, resolve.
// Every step is terminal on failure.
type Gate struct {
	JWT   *JWT
	Users UserFinder
}

func (g *Gate) Authenticate(ctx context.Context, authorization string) (*user.User, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return nil, ErrNoToken
	}

	uid, err := g.JWT.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := g.Users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// bearerToken returns the second segment of "<scheme> <token>". The scheme is
// not checked here: a token under any scheme goes on to verification.
func bearerToken(h string) (string, bool) {
	_, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth attaches the authenticated user to the request context or rejects
// the request with 401.
func RequireAuth(g *Gate, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
