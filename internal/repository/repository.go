// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage provides the only real
// implementation; tests use in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/filevault/internal/model"
)

// ListFilter narrows ListByParent/ListByFolder queries.
//
// ParentID is the exact parent to list under — the empty string selects
// root-level entities (stored as NULL). Name is a case-insensitive substring
// filter; empty matches everything. ViewerID is the requesting user: results
// are rows owned by the viewer OR marked public.
type ListFilter struct {
	ViewerID string
	ParentID string
	Name     string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type FolderRepository interface {
	CreateFolder(ctx context.Context, folder *model.Folder) error
	GetFolderByID(ctx context.Context, id string) (*model.Folder, error)
	ListFolders(ctx context.Context, f ListFilter) ([]model.Folder, error)
	// UpdateFolder and UpdateFolderEditors are unconditional updates by id.
	UpdateFolder(ctx context.Context, id, name string, isPublic bool) (*model.Folder, error)
	UpdateFolderEditors(ctx context.Context, id string, editorIDs []string) (*model.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
}

type FileRepository interface {
	CreateFile(ctx context.Context, file *model.File) error
	GetFileByID(ctx context.Context, id string) (*model.File, error)
	ListFiles(ctx context.Context, f ListFilter) ([]model.File, error)
	// ListFilesByFolder returns every row with the given folder id,
	// regardless of owner or visibility. Used by the folder delete cascade.
	ListFilesByFolder(ctx context.Context, folderID string) ([]model.File, error)
	UpdateFile(ctx context.Context, id, name string, isPublic bool) (*model.File, error)
	UpdateFileEditors(ctx context.Context, id string, editorIDs []string) (*model.File, error)
	DeleteFile(ctx context.Context, id string) error
	DeleteFilesByFolder(ctx context.Context, folderID string) error
}
