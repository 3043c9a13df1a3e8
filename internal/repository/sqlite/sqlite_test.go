package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/filevault/internal/model"
)

// newTestDB creates an in-memory database with the full schema.
// Each test gets its own database — no shared state between tests.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(\":memory:\") error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user and fails the test on error.
func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "$2a$04$testhash"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return user
}

// createTestFolder inserts a folder and fails the test on error.
func createTestFolder(t *testing.T, db *DB, ownerID, name, parentID string, public bool) *model.Folder {
	t.Helper()
	folder := &model.Folder{Name: name, IsPublic: public, ParentID: parentID, OwnerID: ownerID}
	if err := db.CreateFolder(context.Background(), folder); err != nil {
		t.Fatalf("failed to create test folder %s: %v", name, err)
	}
	return folder
}

// createTestFile inserts a file and fails the test on error.
func createTestFile(t *testing.T, db *DB, ownerID, name, folderID string, public bool) *model.File {
	t.Helper()
	file := &model.File{
		Name:     name,
		Key:      name + ".bin",
		IsPublic: public,
		FolderID: folderID,
		OwnerID:  ownerID,
	}
	if err := db.CreateFile(context.Background(), file); err != nil {
		t.Fatalf("failed to create test file %s: %v", name, err)
	}
	return file
}
