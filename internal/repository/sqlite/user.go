package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/model"
	"github.com/sakif/filevault/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. The id is generated here (xid — 20 chars,
// URL-safe, sortable by creation time). PasswordHash may be empty for
// OAuth-created accounts.
//
// The UNIQUE constraint on email is the only duplicate guard at this level;
// the service checks for an existing account first, so a constraint hit here
// means a concurrent sign-up won the race. We surface it as a conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
		user.ID,
		user.Email,
		nullable(user.PasswordHash),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict(fmt.Sprintf("user with email %s already exists", user.Email))
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email.
// Returns apperror.ErrNotFound if no user exists with that email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u    model.User
		hash sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}

	u.PasswordHash = hash.String
	return &u, nil
}

// UpdateUserPassword sets the password hash on an existing user and returns
// the updated record. Used when an OAuth-created account is claimed via
// sign-up, and for future password changes.
func (db *DB) UpdateUserPassword(ctx context.Context, id, passwordHash string) (*model.User, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating password for user %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: rows affected for user %s: %w", id, err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("user", id)
	}

	var u model.User
	var hash sql.NullString
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &hash)
	if err != nil {
		return nil, fmt.Errorf("sqlite: re-reading user %s: %w", id, err)
	}
	u.PasswordHash = hash.String

	return &u, nil
}

// ListUsers returns all users ordered by id ascending (creation order,
// since xids sort by time).
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, email, password_hash FROM users ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var (
			u    model.User
			hash sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Email, &hash); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		u.PasswordHash = hash.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}
