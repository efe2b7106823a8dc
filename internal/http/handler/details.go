package handler

import (
	"errors"
	"net/http"

	"gatekeeper/internal/auth"
	"gatekeeper/internal/http/respond"
	"gatekeeper/internal/user"

	"go.uber.org/zap"
)

type DetailsHandler struct {
	Log *zap.Logger
}

type detailsResp struct {
	UserDetails *user.User `json:"userDetails"`
}

// Details returns the profile attached by auth.RequireAuth.
func (h *DetailsHandler) Details(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.Log, errors.New("details: no user in context"))
		return
	}
	respond.JSON(w, http.StatusOK, detailsResp{UserDetails: u})
}
