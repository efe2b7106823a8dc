package http

import (
	"net/http"

	"gatekeeper/internal/auth"
	"gatekeeper/internal/config"
	"gatekeeper/internal/http/handler"
	mw "gatekeeper/internal/http/middleware"
	"gatekeeper/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Users  user.Store
	Hasher handler.PasswordHasher
	JWT    *auth.JWT
	Log    *zap.Logger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(log))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/server-health", handler.Health)

	ah := &handler.AuthHandler{Users: d.Users, Hasher: d.Hasher, JWT: d.JWT, Log: log}
	details := &handler.DetailsHandler{Log: log}
	gate := &auth.Gate{JWT: d.JWT, Users: d.Users}

	// Each route is an ordered pipeline; any stage may answer and stop it.
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/signup", chi.Chain(mw.ValidateSignup(log)).HandlerFunc(ah.Signup))
		r.Method(http.MethodPost, "/login", chi.Chain(mw.ValidateLogin(log)).HandlerFunc(ah.Login))
		r.Method(http.MethodGet, "/details", chi.Chain(auth.RequireAuth(gate, log)).HandlerFunc(details.Details))
	})

	return r
}
