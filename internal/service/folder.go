// Package service — folder business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/model"
	"github.com/sakif/filevault/internal/repository"
	"github.com/sakif/filevault/internal/storage"
)

// FolderInput is the payload for creating a folder. ParentID empty means the
// folder lives at the root of the owner's drive.
type FolderInput struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"parentId"`
}

func (in FolderInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
	))
}

// FolderService owns the folder lifecycle, including the delete cascade that
// reaches into file rows and their backing objects.
type FolderService struct {
	folders repository.FolderRepository
	files   repository.FileRepository
	objects storage.ObjectStore
	logger  *slog.Logger
}

func NewFolderService(
	folders repository.FolderRepository,
	files repository.FileRepository,
	objects storage.ObjectStore,
	logger *slog.Logger,
) *FolderService {
	return &FolderService{
		folders: folders,
		files:   files,
		objects: objects,
		logger:  logger,
	}
}

// Create makes a new folder owned by ownerID. Duplicate names are allowed —
// folders are identified by id, the name is just a label.
func (s *FolderService) Create(ctx context.Context, ownerID string, in FolderInput) (*model.Folder, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	folder := &model.Folder{
		Name:     in.Name,
		IsPublic: in.IsPublic,
		ParentID: in.ParentID,
		OwnerID:  ownerID,
	}
	if err := s.folders.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		slog.String("folderID", folder.ID),
		slog.String("ownerID", ownerID),
	)

	return folder, nil
}

// ListByParent returns the folders under parentID (empty = root) that are
// visible to the viewer: their own plus anyone's public ones, optionally
// filtered by a case-insensitive name substring, in creation order.
func (s *FolderService) ListByParent(ctx context.Context, viewerID, parentID, name string) ([]model.Folder, error) {
	return s.folders.ListFolders(ctx, repository.ListFilter{
		ViewerID: viewerID,
		ParentID: parentID,
		Name:     name,
	})
}

// Update renames a folder and/or toggles its visibility.
func (s *FolderService) Update(ctx context.Context, id string, in FolderInput) (*model.Folder, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.folders.UpdateFolder(ctx, id, in.Name, in.IsPublic)
}

// UpdateEditors replaces the folder's editor id set.
func (s *FolderService) UpdateEditors(ctx context.Context, id string, editorIDs []string) (*model.Folder, error) {
	return s.folders.UpdateFolderEditors(ctx, id, editorIDs)
}

// Delete removes a folder the caller owns, cascading to the files inside it.
//
// ORDER OF OPERATIONS:
//  1. Ownership check — only the owner may delete, even if the folder is
//     public or the caller is listed as an editor.
//  2. Enumerate EVERY file row in the folder (not just the caller-visible
//     slice) and delete the rows.
//  3. Delete the folder row.
//  4. Remove each file's backing object from the store.
//
// The relational deletes always run to completion before the store is
// touched, so a flaky store can never leave metadata behind. If any object
// removal fails the rows are already gone and the error surfaces as a
// storage error (502) — the orphaned objects need manual cleanup, which
// beats dangling metadata pointing at nothing.
//
// Child folders are NOT cascaded: deleting a folder leaves its subfolders
// (and their contents) in place with a dangling parent id.
func (s *FolderService) Delete(ctx context.Context, callerID, id string) error {
	folder, err := s.folders.GetFolderByID(ctx, id)
	if err != nil {
		return err
	}
	if folder.OwnerID != callerID {
		return apperror.Forbidden("only the owner can delete a folder")
	}

	files, err := s.files.ListFilesByFolder(ctx, id)
	if err != nil {
		return err
	}

	if err := s.files.DeleteFilesByFolder(ctx, id); err != nil {
		return err
	}
	if err := s.folders.DeleteFolder(ctx, id); err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		slog.String("folderID", id),
		slog.Int("cascadedFiles", len(files)),
	)

	for _, f := range files {
		if err := s.objects.Remove(ctx, f.Key); err != nil {
			s.logger.Error("object removal failed during folder cascade",
				slog.String("folderID", id),
				slog.String("key", f.Key),
				slog.Any("error", err),
			)
			return apperror.Storage(fmt.Sprintf("failed to remove object %s", f.Key))
		}
	}

	return nil
}
