package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/repository"
)

// =========================================================================
// CREATE / GET TESTS
// =========================================================================

func TestCreateFolder(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	folder := createTestFolder(t, db, owner.ID, "Docs", "", false)
	if folder.ID == "" {
		t.Error("CreateFolder() did not set folder.ID")
	}

	got, err := db.GetFolderByID(context.Background(), folder.ID)
	if err != nil {
		t.Fatalf("GetFolderByID() error = %v", err)
	}
	if got.Name != "Docs" || got.OwnerID != owner.ID {
		t.Errorf("got %+v, want name Docs owned by %s", got, owner.ID)
	}
	if got.ParentID != "" {
		t.Errorf("ParentID = %q, want root sentinel \"\"", got.ParentID)
	}
	if got.EditorIDs != nil {
		t.Errorf("EditorIDs = %v, want nil for a never-shared folder", got.EditorIDs)
	}
}

func TestCreateFolder_DuplicateNamesAllowed(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	createTestFolder(t, db, owner.ID, "same", "", false)
	createTestFolder(t, db, owner.ID, "same", "", false)

	folders, err := db.ListFolders(context.Background(), repository.ListFilter{ViewerID: owner.ID})
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(folders) != 2 {
		t.Errorf("got %d folders, want 2 — duplicate names must be allowed", len(folders))
	}
}

func TestGetFolderByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetFolderByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetFolderByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS — visibility, parent matching, name filter, ordering
// =========================================================================

func TestListFolders_OwnerOrPublic(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	createTestFolder(t, db, alice.ID, "alice-private", "", false)
	createTestFolder(t, db, alice.ID, "alice-public", "", true)
	createTestFolder(t, db, bob.ID, "bob-private", "", false)

	got, err := db.ListFolders(context.Background(), repository.ListFilter{ViewerID: bob.ID})
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}

	// Bob sees his own private folder plus Alice's public one
	if len(got) != 2 {
		t.Fatalf("got %d folders, want 2: %+v", len(got), got)
	}
	for _, f := range got {
		if f.OwnerID != bob.ID && !f.IsPublic {
			t.Errorf("folder %q is neither bob's nor public", f.Name)
		}
	}
}

func TestListFolders_VisibilityFollowsIsPublicUpdates(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	docs := createTestFolder(t, db, alice.ID, "Docs", "", false)

	listForBob := func() int {
		t.Helper()
		got, err := db.ListFolders(context.Background(), repository.ListFilter{ViewerID: bob.ID})
		if err != nil {
			t.Fatalf("ListFolders() error = %v", err)
		}
		return len(got)
	}

	if n := listForBob(); n != 0 {
		t.Fatalf("bob sees %d folders before publish, want 0", n)
	}

	if _, err := db.UpdateFolder(context.Background(), docs.ID, "Docs", true); err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}

	if n := listForBob(); n != 1 {
		t.Fatalf("bob sees %d folders after publish, want 1", n)
	}
}

func TestListFolders_ParentMatching(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	root := createTestFolder(t, db, owner.ID, "root", "", false)
	createTestFolder(t, db, owner.ID, "child", root.ID, false)

	atRoot, err := db.ListFolders(context.Background(), repository.ListFilter{ViewerID: owner.ID})
	if err != nil {
		t.Fatalf("ListFolders(root) error = %v", err)
	}
	if len(atRoot) != 1 || atRoot[0].Name != "root" {
		t.Errorf("root listing = %+v, want just the root folder", atRoot)
	}

	children, err := db.ListFolders(context.Background(), repository.ListFilter{
		ViewerID: owner.ID,
		ParentID: root.ID,
	})
	if err != nil {
		t.Fatalf("ListFolders(child) error = %v", err)
	}
	if len(children) != 1 || children[0].Name != "child" {
		t.Errorf("child listing = %+v, want just the child folder", children)
	}
}

func TestListFolders_NameFilterCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	createTestFolder(t, db, owner.ID, "Holiday Photos", "", false)
	createTestFolder(t, db, owner.ID, "Work", "", false)

	got, err := db.ListFolders(context.Background(), repository.ListFilter{
		ViewerID: owner.ID,
		Name:     "photo",
	})
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Holiday Photos" {
		t.Errorf("got %+v, want only Holiday Photos", got)
	}
}

func TestListFolders_OrderedByIDAscending(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	first := createTestFolder(t, db, owner.ID, "first", "", false)
	second := createTestFolder(t, db, owner.ID, "second", "", false)
	third := createTestFolder(t, db, owner.ID, "third", "", false)

	got, err := db.ListFolders(context.Background(), repository.ListFilter{ViewerID: owner.ID})
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d folders, want 3", len(got))
	}
	wantOrder := []string{first.ID, second.ID, third.ID}
	for i, f := range got {
		if f.ID != wantOrder[i] {
			t.Errorf("position %d: id = %q, want %q (id-ascending order)", i, f.ID, wantOrder[i])
		}
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdateFolder(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	folder := createTestFolder(t, db, owner.ID, "old-name", "", false)

	updated, err := db.UpdateFolder(context.Background(), folder.ID, "new-name", true)
	if err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}
	if updated.Name != "new-name" || !updated.IsPublic {
		t.Errorf("updated = %+v, want new-name/public", updated)
	}
}

func TestUpdateFolder_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.UpdateFolder(context.Background(), "missing", "x", false)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("UpdateFolder() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateFolderEditors_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	folder := createTestFolder(t, db, owner.ID, "shared", "", false)

	updated, err := db.UpdateFolderEditors(context.Background(), folder.ID, []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("UpdateFolderEditors() error = %v", err)
	}
	if len(updated.EditorIDs) != 2 || updated.EditorIDs[0] != "u1" || updated.EditorIDs[1] != "u2" {
		t.Errorf("EditorIDs = %v, want [u1 u2]", updated.EditorIDs)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteFolder(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	folder := createTestFolder(t, db, owner.ID, "doomed", "", false)

	if err := db.DeleteFolder(context.Background(), folder.ID); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	_, err := db.GetFolderByID(context.Background(), folder.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("folder still retrievable after delete: %v", err)
	}
}

func TestDeleteFolder_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteFolder(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("DeleteFolder() error = %v, want ErrNotFound", err)
	}
}
