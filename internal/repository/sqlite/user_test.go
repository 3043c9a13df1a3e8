package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Email: "alice@example.com", PasswordHash: "$2a$04$hash"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
}

func TestCreateUser_PasswordlessAccount(t *testing.T) {
	db := newTestDB(t)

	// OAuth-created accounts have no password hash
	user := &model.User{Email: "oauth@example.com"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := db.GetUserByEmail(context.Background(), "oauth@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.HasPassword() {
		t.Error("passwordless account should report HasPassword() == false")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup@example.com")

	err := db.CreateUser(context.Background(), &model.User{Email: "dup@example.com"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "bob@example.com")

	got, err := db.GetUserByEmail(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}
	if got.PasswordHash == "" {
		t.Error("PasswordHash should round-trip")
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE PASSWORD TESTS
// =========================================================================

func TestUpdateUserPassword(t *testing.T) {
	db := newTestDB(t)

	// Start from a passwordless (OAuth) account
	user := &model.User{Email: "claim@example.com"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	updated, err := db.UpdateUserPassword(context.Background(), user.ID, "$2a$04$newhash")
	if err != nil {
		t.Fatalf("UpdateUserPassword() error = %v", err)
	}
	if updated.ID != user.ID {
		t.Errorf("updated.ID = %q, want the same user %q", updated.ID, user.ID)
	}
	if !updated.HasPassword() {
		t.Error("updated user should have a password set")
	}
}

func TestUpdateUserPassword_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.UpdateUserPassword(context.Background(), "missing-id", "$2a$04$h")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("UpdateUserPassword() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListUsers(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "a@example.com")
	createTestUser(t, db, "b@example.com")

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("ListUsers() returned %d users, want 2", len(users))
	}
}

func TestListUsers_Empty(t *testing.T) {
	db := newTestDB(t)

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("ListUsers() = %v, want empty non-nil slice", users)
	}
}
