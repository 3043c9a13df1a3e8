// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// Accounts come from two places: email/password sign-up, and Google OAuth.
// An OAuth-created account has no password yet — PasswordHash is the empty
// string until the user claims the account by signing up with a password.
//
// WHY PasswordHash string (not *string)?
// The empty string is a perfectly good "no password set" sentinel and is much
// simpler to work with than a nullable pointer. The hash is never serialized
// to clients (json:"-").
type User struct {
	ID           string `json:"id"    db:"id"`
	Email        string `json:"email" db:"email"` // unique across all accounts
	PasswordHash string `json:"-"     db:"password_hash"`
}

// HasPassword reports whether the account has a password set.
// OAuth-created accounts return false until the user signs up with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
