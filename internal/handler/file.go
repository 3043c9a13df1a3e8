package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/filevault/internal/service"
)

// FileHandler exposes the file CRUD surface plus the two object-store
// brokered operations: presigned uploads and public download URLs.
type FileHandler struct {
	service *service.FileService
	logger  *slog.Logger
}

func NewFileHandler(svc *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{service: svc, logger: logger}
}

// HandleCreate registers metadata for an uploaded object.
//
// HTTP: POST /api/files/new (guarded)
func (h *FileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var in service.FileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	file, err := h.service.Create(r.Context(), identity.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, file)
}

// HandlePresignedLink mints a presigned upload for a derived object key.
//
// HTTP: POST /api/files/presigned-link (guarded)
//
// The response echoes the derived key alongside the store's URL and form
// fields — the client needs the key back to register the metadata row after
// the upload completes.
func (h *FileHandler) HandlePresignedLink(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	var req service.PresignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	key, post, err := h.service.CreatePresignedUpload(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"key":    key,
		"url":    post.URL,
		"fields": post.Fields,
	})
}

// HandleListByFolder lists the files in a folder visible to the caller.
//
// HTTP: POST /api/files/list-by-folder/{id} (guarded; {id}="root" for the
// top level). The body optionally carries a name filter.
func (h *FileHandler) HandleListByFolder(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	req, err := decodeListRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	files, err := h.service.ListByFolder(r.Context(), identity.ID, parentParam(r), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

// HandleObjectURL returns the public URL for an object key.
//
// HTTP: GET /api/files/{key} (guarded)
func (h *FileHandler) HandleObjectURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url": h.service.ObjectURL(chi.URLParam(r, "key")),
	})
}

// HandleUpdate renames a file and/or toggles its visibility.
//
// HTTP: PUT /api/files/update/{id} (guarded)
func (h *FileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	var in service.FileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	file, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

// HandleUpdateEditors replaces the file's editor set.
//
// HTTP: PUT /api/files/update-editors/{id} (guarded)
func (h *FileHandler) HandleUpdateEditors(w http.ResponseWriter, r *http.Request) {
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

	file, err := h.service.UpdateEditors(r.Context(), chi.URLParam(r, "id"), body.EditorIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

// HandleDelete deletes a file the caller owns, then its backing object.
//
// HTTP: DELETE /api/files/{id} (guarded)
func (h *FileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}
