package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/auth"
	"github.com/sakif/filevault/internal/model"
	"github.com/sakif/filevault/internal/repository"
	"github.com/sakif/filevault/internal/storage"
)

// =========================================================================
// FAKES AND HELPERS
//
// In-memory fakes (not a mock framework) keep these tests dependency-free
// and easy to read — you can see exactly what each fake does.
// =========================================================================

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by internal ID
	nextID int
	// set to a non-nil error to simulate a database failure
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("email taken")
		}
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) UpdateUserPassword(ctx context.Context, id, passwordHash string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	u.PasswordHash = passwordHash
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

type fakeFolderRepo struct {
	folders map[string]*model.Folder
	nextID  int
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*model.Folder), nextID: 1}
}

func (f *fakeFolderRepo) CreateFolder(ctx context.Context, folder *model.Folder) error {
	folder.ID = fmt.Sprintf("folder-%d", f.nextID)
	f.nextID++
	copied := *folder
	f.folders[folder.ID] = &copied
	return nil
}

func (f *fakeFolderRepo) GetFolderByID(ctx context.Context, id string) (*model.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, apperror.NotFound("folder", id)
	}
	copied := *folder
	return &copied, nil
}

func (f *fakeFolderRepo) ListFolders(ctx context.Context, filter repository.ListFilter) ([]model.Folder, error) {
	out := []model.Folder{}
	for _, folder := range f.folders {
		if folder.ParentID != filter.ParentID {
			continue
		}
		if folder.OwnerID != filter.ViewerID && !folder.IsPublic {
			continue
		}
		out = append(out, *folder)
	}
	return out, nil
}

func (f *fakeFolderRepo) UpdateFolder(ctx context.Context, id, name string, isPublic bool) (*model.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, apperror.NotFound("folder", id)
	}
	folder.Name = name
	folder.IsPublic = isPublic
	copied := *folder
	return &copied, nil
}

func (f *fakeFolderRepo) UpdateFolderEditors(ctx context.Context, id string, editorIDs []string) (*model.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, apperror.NotFound("folder", id)
	}
	folder.EditorIDs = editorIDs
	copied := *folder
	return &copied, nil
}

func (f *fakeFolderRepo) DeleteFolder(ctx context.Context, id string) error {
	if _, ok := f.folders[id]; !ok {
		return apperror.NotFound("folder", id)
	}
	delete(f.folders, id)
	return nil
}

type fakeFileRepo struct {
	files  map[string]*model.File
	nextID int
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*model.File), nextID: 1}
}

func (f *fakeFileRepo) CreateFile(ctx context.Context, file *model.File) error {
	file.ID = fmt.Sprintf("file-%d", f.nextID)
	f.nextID++
	copied := *file
	f.files[file.ID] = &copied
	return nil
}

func (f *fakeFileRepo) GetFileByID(ctx context.Context, id string) (*model.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, apperror.NotFound("file", id)
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFileRepo) ListFiles(ctx context.Context, filter repository.ListFilter) ([]model.File, error) {
	out := []model.File{}
	for _, file := range f.files {
		if file.FolderID != filter.ParentID {
			continue
		}
		if file.OwnerID != filter.ViewerID && !file.IsPublic {
			continue
		}
		out = append(out, *file)
	}
	return out, nil
}

func (f *fakeFileRepo) ListFilesByFolder(ctx context.Context, folderID string) ([]model.File, error) {
	out := []model.File{}
	for _, file := range f.files {
		if file.FolderID == folderID {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (f *fakeFileRepo) UpdateFile(ctx context.Context, id, name string, isPublic bool) (*model.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, apperror.NotFound("file", id)
	}
	file.Name = name
	file.IsPublic = isPublic
	copied := *file
	return &copied, nil
}

func (f *fakeFileRepo) UpdateFileEditors(ctx context.Context, id string, editorIDs []string) (*model.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, apperror.NotFound("file", id)
	}
	file.EditorIDs = editorIDs
	copied := *file
	return &copied, nil
}

func (f *fakeFileRepo) DeleteFile(ctx context.Context, id string) error {
	if _, ok := f.files[id]; !ok {
		return apperror.NotFound("file", id)
	}
	delete(f.files, id)
	return nil
}

func (f *fakeFileRepo) DeleteFilesByFolder(ctx context.Context, folderID string) error {
	for id, file := range f.files {
		if file.FolderID == folderID {
			delete(f.files, id)
		}
	}
	return nil
}

// fakeObjectStore records removals and presign calls.
type fakeObjectStore struct {
	removed    []string
	presigned  []string
	removeErr  error
	presignErr error
}

func (f *fakeObjectStore) PresignUpload(ctx context.Context, key, contentType string) (*storage.PresignedPost, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	f.presigned = append(f.presigned, key)
	return &storage.PresignedPost{
		URL:    "https://bucket.s3.example.com",
		Fields: map[string]string{"key": key, "Content-Type": contentType},
	}, nil
}

func (f *fakeObjectStore) Remove(ctx context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeObjectStore) ObjectURL(key string) string {
	return "https://bucket.s3.example.com/" + key
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService returns an AuthService wired with fake dependencies.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	// bcrypt.MinCost keeps the hashing fast in tests
	ps := auth.NewPasswordService(bcrypt.MinCost)

	return NewAuthService(repo, ts, ps, testLogger())
}
