package handler

import (
	"errors"
	"fmt"
	"net/http"

	"gatekeeper/internal/apperr"
	"gatekeeper/internal/auth"
	"gatekeeper/internal/http/respond"
	"gatekeeper/internal/user"
	"gatekeeper/internal/validate"

	"go.uber.org/zap"
)

var (
	errUserExists     = apperr.Conflict("User already exists!!")
	errUserNotExists  = apperr.NotFound("User not Exists!!")
	errBadCredentials = apperr.Authentication("Invalid credentials")
)

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

type AuthHandler struct {
	Users  user.Store
	Hasher PasswordHasher
	JWT    *auth.JWT
	Log    *zap.Logger
}

type tokenResp struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Signup expects validate.ValidateSignup to have run.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := validate.SignupFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.Log, errors.New("signup: no validated payload in context"))
		return
	}

	// fast path only; the unique index decides
	if _, err := h.Users.FindByEmail(r.Context(), req.Email); err == nil {
		respond.Error(w, r, h.Log, errUserExists)
		return
	} else if !errors.Is(err, user.ErrNotFound) {
		respond.Error(w, r, h.Log, fmt.Errorf("signup lookup: %w", err))
		return
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		respond.Error(w, r, h.Log, fmt.Errorf("hash password: %w", err))
		return
	}

	u := user.User{Email: req.Email, PasswordHash: hash, FullName: req.FullName}
	if err := h.Users.Create(r.Context(), &u); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			respond.Error(w, r, h.Log, errUserExists)
			return
		}
		respond.Error(w, r, h.Log, fmt.Errorf("create user: %w", err))
		return
	}

	token, err := h.JWT.Sign(u.ID)
	if err != nil {
		respond.Error(w, r, h.Log, fmt.Errorf("sign token: %w", err))
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID))
	respond.JSON(w, http.StatusCreated, tokenResp{Message: "User created successfully!!", Token: token})
}

// Login expects validate.ValidateLogin to have run.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := validate.LoginFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.Log, errors.New("login: no validated payload in context"))
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respond.Error(w, r, h.Log, errUserNotExists)
			return
		}
		respond.Error(w, r, h.Log, fmt.Errorf("login lookup: %w", err))
		return
	}

	if !h.Hasher.Verify(u.PasswordHash, req.Password) {
		respond.Error(w, r, h.Log, errBadCredentials)
		return
	}

	token, err := h.JWT.Sign(u.ID)
	if err != nil {
		respond.Error(w, r, h.Log, fmt.Errorf("sign token: %w", err))
		return
	}

	respond.JSON(w, http.StatusOK, tokenResp{Message: "Login successful", Token: token})
}
