package handler

import (
	"net/http"

	"gatekeeper/internal/http/respond"
)

func Health(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, http.StatusOK, "Server is healthy...")
}
