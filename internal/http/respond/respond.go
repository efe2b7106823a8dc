// Package respond writes JSON response bodies.
package respond

import (
	"encoding/json"
	"net/http"

	"gatekeeper/internal/apperr"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type message struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, message{Message: msg})
}

// Error writes err as {message} with its kind's status. Internal causes are
// logged and replaced by a generic message.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	e := apperr.From(err)
	if log != nil {
		fields := []zap.Field{
			zap.String("kind", e.Kind.String()),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err),
		}
		if e.Kind == apperr.KindInternal {
			log.Error("request failed", fields...)
		} else {
			log.Debug("request rejected", fields...)
		}
	}
	Message(w, e.Kind.Status(), e.Message)
}
