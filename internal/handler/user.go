package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/filevault/internal/service"
)

// UserHandler exposes the user directory.
type UserHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

func NewUserHandler(svc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// HandleList returns every registered account. The frontend uses it to
// populate the editor picker when sharing a folder or file. Password hashes
// never serialize (json:"-" on the model).
//
// HTTP: GET /api/users (guarded)
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}
