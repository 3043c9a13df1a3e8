// Package service — authentication business logic.
//
// AuthService is the business logic layer for authentication. It sits between
// the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// KEY RESPONSIBILITIES:
//   - Enforce the sign-up rules (including claiming OAuth-created accounts)
//   - Verify credentials and issue access/refresh token pairs
//   - Orchestrate the Google OAuth callback: upsert the user, issue tokens
//   - Encapsulate all auth rules in one place, away from HTTP concerns
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/auth"
	"github.com/sakif/filevault/internal/model"
	"github.com/sakif/filevault/internal/repository"
)

// Credentials is the email/password pair accepted by sign-up and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the credential shape before any database work happens.
// Both endpoints share the same rules: a syntactically valid email and a
// password between 5 and 32 characters.
func (c Credentials) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email, validation.Length(5, 0)),
		validation.Field(&c.Password, validation.Required, validation.Length(5, 32)),
	)
	return wrapValidation(err)
}

// wrapValidation converts an ozzo validation result into the application
// error taxonomy so handlers map it to 400 without knowing about ozzo.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			return apperror.ValidationFailed(field, fmt.Sprintf("%s: %s", field, fieldErr.Error()))
		}
	}
	return apperror.ValidationFailed("", err.Error())
}

// TokenPair bundles the two JWTs every successful authentication produces.
// The handler turns these into the accessToken and refreshToken cookies.
type TokenPair struct {
	Access  string
	Refresh string
}

// AuthResult is returned by authentication operations. It bundles the user
// record and the issued tokens so the caller (the HTTP handler) can set the
// cookies and respond in one step.
type AuthResult struct {
	User   *model.User
	Tokens TokenPair
}

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// SignUp registers a new email/password account.
//
// THREE CASES, keyed on what already exists for the email:
//
//  1. No account → create one with the bcrypt hash of the password.
//  2. A passwordless account (created earlier via Google OAuth) → CLAIM it:
//     set the password on the existing row. The account keeps its id, so the
//     user's folders and files created while OAuth-only remain theirs.
//  3. An account that already has a password → Conflict.
func (s *AuthService) SignUp(ctx context.Context, creds Credentials) (*AuthResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user, err := s.users.GetUserByEmail(ctx, creds.Email)
	switch {
	case err == nil && user.HasPassword():
		return nil, apperror.Conflict("an account with this email already exists")

	case err == nil:
		// Claim the passwordless account.
		user, err = s.users.UpdateUserPassword(ctx, user.ID, hash)
		if err != nil {
			return nil, fmt.Errorf("service/auth: claiming account for %s: %w", creds.Email, err)
		}
		s.logger.Info("passwordless account claimed", slog.String("userID", user.ID))

	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{Email: creds.Email, PasswordHash: hash}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user signed up", slog.String("userID", user.ID))

	default:
		return nil, fmt.Errorf("service/auth: looking up %s: %w", creds.Email, err)
	}

	return s.issueFor(user)
}

// Login verifies an email/password pair and issues a fresh token pair.
//
// An unknown email surfaces as NotFound and a wrong password as Forbidden —
// the two cases are deliberately distinguishable in the response. An account
// that exists but has no password (OAuth-only) also fails as Forbidden; the
// user must either log in via Google or claim the account via sign-up.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		return nil, err
	}

	if !user.HasPassword() {
		return nil, apperror.Forbidden("wrong credentials")
	}
	if err := s.passwords.Verify(user.PasswordHash, creds.Password); err != nil {
		return nil, apperror.Forbidden("wrong credentials")
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return s.issueFor(user)
}

// LoginWithGoogle completes the OAuth callback: the handler has already
// exchanged the code for a Google profile, and this method upserts the
// account and issues tokens.
//
// First Google login creates a passwordless account; later logins reuse it.
// If the email already has a password account, Google login simply signs
// into that same account — the identity key is the email either way.
func (s *AuthService) LoginWithGoogle(ctx context.Context, gUser *auth.GoogleUser) (*AuthResult, error) {
	if gUser == nil {
		return nil, fmt.Errorf("service/auth: Google user must not be nil")
	}

	user, err := s.users.GetUserByEmail(ctx, gUser.Email)
	if errors.Is(err, apperror.ErrNotFound) {
		user = &model.User{Email: gUser.Email}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user created via Google OAuth", slog.String("userID", user.ID))
	} else if err != nil {
		return nil, fmt.Errorf("service/auth: looking up %s: %w", gUser.Email, err)
	}

	s.logger.Info("user authenticated via Google", slog.String("userID", user.ID))

	return s.issueFor(user)
}

// Refresh trades a valid refresh token for a brand-new token pair.
//
// The token kind is checked here (unlike in the guard): presenting an ACCESS
// token to the refresh endpoint fails, otherwise a leaked one-hour access
// token could be laundered into an indefinitely renewable session.
//
// The user is re-resolved by email so a deleted account cannot refresh, and
// the new tokens carry the account's current id.
func (s *AuthService) Refresh(ctx context.Context, tokenStr string) (*AuthResult, error) {
	identity, kind, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, apperror.Forbidden("invalid refresh token")
	}
	if kind != auth.KindRefresh {
		return nil, apperror.Forbidden("invalid refresh token")
	}

	user, err := s.users.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, apperror.Forbidden("invalid refresh token")
	}

	return s.issueFor(user)
}

// GetUserByEmail returns the user for the given email. It also satisfies
// auth.UserResolver, letting the guard middleware re-resolve the principal
// on every request without importing the repository package.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetUserByEmail(ctx, email)
}

// ListUsers returns every registered account, oldest first. Backs the user
// picker the front-end shows when sharing a folder or file.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: listing users: %w", err)
	}
	return users, nil
}

// issueFor signs an access/refresh pair for the user.
func (s *AuthService) issueFor(user *model.User) (*AuthResult, error) {
	identity := auth.Identity{ID: user.ID, Email: user.Email}

	access, err := s.tokens.Issue(identity, auth.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing access token for %s: %w", user.ID, err)
	}
	refresh, err := s.tokens.Issue(identity, auth.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing refresh token for %s: %w", user.ID, err)
	}

	return &AuthResult{
		User:   user,
		Tokens: TokenPair{Access: access, Refresh: refresh},
	}, nil
}
