package middleware

import (
	"context"
	"io"
	"net/http"

	"gatekeeper/internal/apperr"
	"gatekeeper/internal/http/respond"
	"gatekeeper/internal/validate"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Validate reads the body, runs parse on it and hands the result to the next
// stage through the context. Invalid bodies stop here with 400.
func Validate[T any](log *zap.Logger, parse func([]byte) (T, error), attach func(context.Context, T) context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				respond.Error(w, r, log, apperr.Validation("Invalid request body"))
				return
			}

			p, err := parse(body)
			if err != nil {
				respond.Error(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(attach(r.Context(), p)))
		})
	}
}

func ValidateSignup(log *zap.Logger) func(http.Handler) http.Handler {
	return Validate(log, validate.ParseSignup, validate.WithSignup)
}

func ValidateLogin(log *zap.Logger) func(http.Handler) http.Handler {
	return Validate(log, validate.ParseLogin, validate.WithLogin)
}
