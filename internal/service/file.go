// Package service — file business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/model"
	"github.com/sakif/filevault/internal/repository"
	"github.com/sakif/filevault/internal/storage"
)

// FileInput is the payload for registering a file's metadata. Key is the
// object key returned by the presigned-upload step; the client echoes it
// back once the upload succeeded.
type FileInput struct {
	Name     string `json:"name"`
	Key      string `json:"key"`
	IsPublic bool   `json:"isPublic"`
	FolderID string `json:"folderId"`
}

func (in FileInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Key, validation.Required),
	))
}

// PresignRequest asks for upload authorization for one object.
type PresignRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
}

func (r PresignRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required),
		validation.Field(&r.ContentType, validation.Required),
	))
}

// FileService owns file metadata and brokers upload/download access to the
// object store. File bytes never pass through the service.
type FileService struct {
	files   repository.FileRepository
	objects storage.ObjectStore
	logger  *slog.Logger

	// now is swappable so key-derivation tests get a fixed timestamp.
	now func() time.Time
}

func NewFileService(
	files repository.FileRepository,
	objects storage.ObjectStore,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		files:   files,
		objects: objects,
		logger:  logger,
		now:     time.Now,
	}
}

// Create registers metadata for an already-uploaded object.
func (s *FileService) Create(ctx context.Context, ownerID string, in FileInput) (*model.File, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	file := &model.File{
		Name:     in.Name,
		Key:      in.Key,
		IsPublic: in.IsPublic,
		FolderID: in.FolderID,
		OwnerID:  ownerID,
	}
	if err := s.files.CreateFile(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file created",
		slog.String("fileID", file.ID),
		slog.String("ownerID", ownerID),
	)

	return file, nil
}

// ListByFolder returns the files in folderID (empty = root) visible to the
// viewer, with the same visibility and ordering rules as folder listing.
func (s *FileService) ListByFolder(ctx context.Context, viewerID, folderID, name string) ([]model.File, error) {
	return s.files.ListFiles(ctx, repository.ListFilter{
		ViewerID: viewerID,
		ParentID: folderID,
		Name:     name,
	})
}

// Update renames a file and/or toggles its visibility. The object key never
// changes — renaming the metadata does not move the stored object.
func (s *FileService) Update(ctx context.Context, id string, in FileInput) (*model.File, error) {
	if in.Name == "" {
		return nil, apperror.ValidationFailed("name", "name: cannot be blank")
	}
	return s.files.UpdateFile(ctx, id, in.Name, in.IsPublic)
}

// UpdateEditors replaces the file's editor id set.
func (s *FileService) UpdateEditors(ctx context.Context, id string, editorIDs []string) (*model.File, error) {
	return s.files.UpdateFileEditors(ctx, id, editorIDs)
}

// Delete removes a file the caller owns: the metadata row first, then the
// backing object. If object removal fails the row stays deleted and the
// failure surfaces as a storage error (502) — same policy as the folder
// cascade.
func (s *FileService) Delete(ctx context.Context, callerID, id string) error {
	file, err := s.files.GetFileByID(ctx, id)
	if err != nil {
		return err
	}
	if file.OwnerID != callerID {
		return apperror.Forbidden("only the owner can delete a file")
	}

	if err := s.files.DeleteFile(ctx, id); err != nil {
		return err
	}

	s.logger.Info("file deleted", slog.String("fileID", id))

	if err := s.objects.Remove(ctx, file.Key); err != nil {
		s.logger.Error("object removal failed",
			slog.String("fileID", id),
			slog.String("key", file.Key),
			slog.Any("error", err),
		)
		return apperror.Storage(fmt.Sprintf("failed to remove object %s", file.Key))
	}

	return nil
}

// CreatePresignedUpload mints a time-limited upload authorization for a
// derived object key and returns the store's URL and form fields verbatim.
func (s *FileService) CreatePresignedUpload(ctx context.Context, req PresignRequest) (string, *storage.PresignedPost, error) {
	if err := req.Validate(); err != nil {
		return "", nil, err
	}

	key := s.deriveKey(req.Key, req.ContentType)

	post, err := s.objects.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		s.logger.Error("presigning upload failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return "", nil, apperror.Storage(fmt.Sprintf("failed to presign upload for %s", key))
	}

	return key, post, nil
}

// ObjectURL returns the public URL for the object at key.
func (s *FileService) ObjectURL(key string) string {
	return s.objects.ObjectURL(key)
}

// deriveKey builds the actual object key from the client-proposed key and
// content type: the proposed key's stem, a millisecond timestamp to keep
// repeated uploads of the same name from clobbering each other, and an
// extension taken from the content type's subtype.
//
//	deriveKey("report.pdf", "application/pdf") → "report-1712345678901.pdf"
func (s *FileService) deriveKey(proposed, contentType string) string {
	stem := strings.TrimSuffix(proposed, path.Ext(proposed))

	ext := contentType
	if i := strings.LastIndex(contentType, "/"); i >= 0 {
		ext = contentType[i+1:]
	}

	return fmt.Sprintf("%s-%d.%s", stem, s.now().UnixMilli(), ext)
}
