// Package auth provides JWT token issuance, password hashing, the Google
// OAuth flow and the request guard middleware.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User signs up or logs in (email/password or Google OAuth)
// 2. Server issues TWO JWTs — a short-lived access token and a longer-lived
//    refresh token — and stores both in cookies
// 3. On protected API calls, the guard middleware reads the accessToken
//    cookie, validates it, re-resolves the user and puts the identity in the
//    request context
// 4. When the access token expires, GET /api/auth/refresh trades the refresh
//    token for a fresh pair
//
// WHY JWT?
// JWT is stateless — the server doesn't store session data. Everything needed
// (user id, email, token kind, expiry) is inside the signed token, and the
// HMAC signature ensures nobody can tamper with it without the secret key.
// There is deliberately no server-side revocation list: "logout" only clears
// the client's cookies.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token types we issue. The kind is embedded in
// the signed payload so the refresh endpoint can reject access tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Signed token lifetimes. Note that the refresh COOKIE is set to live seven
// days (see the handler package) while the signed refresh token itself
// expires after 24 hours — the cookie outlives the credential inside it, so
// a refresh attempted on day two fails validation even though the browser
// still sends the cookie.
const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 24 * time.Hour
)

// Identity is the authenticated principal carried inside every token and
// attached to the request context by the guard middleware.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Sentinel errors returned by Verify. Callers use errors.Is to distinguish
// an expired token (client should refresh) from a tampered/garbage one.
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// TokenService signs and verifies JWTs.
//
// It holds the HMAC secret used for both operations. The same secret must be
// used for both — keep it safe and rotate it periodically in production.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims for the standard
// fields (sub, exp, iat, iss) and adds the email plus the token kind.
//
// "sub" carries the internal user id; "email" is duplicated into the payload
// because the refresh flow and the guard both re-resolve the user by email.
type claims struct {
	Email     string `json:"email"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// Issue creates and signs a token of the given kind for the identity.
// Access tokens live 1 hour, refresh tokens 24 hours.
func (s *TokenService) Issue(id Identity, kind Kind) (string, error) {
	ttl := AccessTokenTTL
	if kind == KindRefresh {
		ttl = RefreshTokenTTL
	}
	return s.IssueWithTTL(id, kind, ttl)
}

// IssueWithTTL creates a token with a custom expiry duration.
// Exported for tests that need already-expired or long-lived tokens.
func (s *TokenService) IssueWithTTL(id Identity, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email:     id.Email,
		TokenType: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "filevault",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing %s token: %w", kind, err)
	}

	return signed, nil
}

// Verify parses and verifies a JWT string, returning the identity it carries
// and the token kind.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches "filevault" (rejects tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// Returns ErrTokenExpired or ErrTokenInvalid (wrapped) on failure.
func (s *TokenService) Verify(tokenStr string) (Identity, Kind, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("filevault"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, "", ErrTokenExpired
		}
		return Identity{}, "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, "", ErrTokenInvalid
	}

	if c.Subject == "" || c.Email == "" {
		return Identity{}, "", fmt.Errorf("%w: missing subject or email", ErrTokenInvalid)
	}

	kind := Kind(c.TokenType)
	if kind != KindAccess && kind != KindRefresh {
		return Identity{}, "", fmt.Errorf("%w: unknown token type %q", ErrTokenInvalid, c.TokenType)
	}

	return Identity{ID: c.Subject, Email: c.Email}, kind, nil
}
