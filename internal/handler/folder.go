package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/auth"
	"github.com/sakif/filevault/internal/service"
)

// rootSentinel is the path segment clients use to address the top level of
// the drive, where parent/folder ids are NULL in the database.
const rootSentinel = "root"

// listRequest is the optional body of the list endpoints: a name substring
// filter. An empty body means "no filter".
type listRequest struct {
	Name string `json:"name"`
}

// FolderHandler exposes the folder CRUD surface.
type FolderHandler struct {
	service *service.FolderService
	logger  *slog.Logger
}

func NewFolderHandler(svc *service.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{service: svc, logger: logger}
}

// requireIdentity pulls the guard-attached identity or writes a 401.
// Shared by the folder and file handlers.
func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authenticated"))
	}
	return identity, ok
}

// parentParam resolves the {id} path segment of the list endpoints:
// "root" (or empty) selects the top level, anything else is a folder id.
func parentParam(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if id == rootSentinel {
		return ""
	}
	return id
}

// decodeListRequest reads the optional name-filter body. A missing body is
// fine; malformed JSON is not.
func decodeListRequest(r *http.Request) (listRequest, error) {
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return listRequest{}, apperror.ValidationFailed("", "request body must be valid JSON")
	}
	return req, nil
}

// HandleCreate creates a folder owned by the caller.
//
// HTTP: POST /api/folders/new (guarded)
func (h *FolderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var in service.FolderInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.service.Create(r.Context(), identity.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

// HandleListByParent lists the folders under a parent that the caller may
// see: their own plus public ones.
//
// HTTP: POST /api/folders/list-by-parent/{id} (guarded; {id}="root" for the
// top level). The body optionally carries a name filter.
func (h *FolderHandler) HandleListByParent(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	req, err := decodeListRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	folders, err := h.service.ListByParent(r.Context(), identity.ID, parentParam(r), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folders)
}

// HandleUpdate renames a folder and/or toggles its visibility.
//
// HTTP: PUT /api/folders/update/{id} (guarded)
func (h *FolderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	var in service.FolderInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

// HandleUpdateEditors replaces the folder's editor set.
//
// HTTP: PUT /api/folders/update-editors/{id} (guarded)
func (h *FolderHandler) HandleUpdateEditors(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	var body struct {
		EditorIDs []string `json:"editorsIds"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.service.UpdateEditors(r.Context(), chi.URLParam(r, "id"), body.EditorIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

// HandleDelete deletes a folder the caller owns, cascading to its files.
//
// HTTP: DELETE /api/folders/{id} (guarded)
func (h *FolderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "folder deleted"})
}
