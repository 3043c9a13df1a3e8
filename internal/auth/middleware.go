package auth

import (
	"context"
	"net/http"

	"github.com/sakif/filevault/internal/model"
)

// contextKey is an unexported type for context keys in this package.
//
// Using a package-private type prevents collisions: only this package can
// create a key of type contextKey, so only this package can read or write
// identity values in the context.
type contextKey string

const identityKey contextKey = "identity"

// AccessTokenCookie is the cookie the guard reads the access token from.
const AccessTokenCookie = "accessToken"

// UserResolver is the slice of the credential store the guard needs.
// *sqlite.DB satisfies it; tests plug in a fake.
type UserResolver interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// RequireAuth is the guard middleware enforced on every protected route.
//
// Per request it:
//  1. reads the accessToken cookie → 401 if absent
//  2. verifies the JWT → 401 if invalid or expired
//  3. re-resolves the user by the embedded email → 401 if the account is gone
//  4. attaches the resolved {id, email} identity to the request context
//
// The DB lookup on every request means a deleted account is locked out
// immediately, even while its tokens are still cryptographically valid.
// Verification results are not cached.
func RequireAuth(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				unauthorized(w, "can't find access token")
				return
			}

			id, _, err := tokens.Verify(cookie.Value)
			if err != nil {
				unauthorized(w, "invalid access token")
				return
			}

			// The token may outlive the account. Resolve the user again and
			// use the CURRENT record from the database, not the token claims.
			user, err := users.GetUserByEmail(r.Context(), id.Email)
			if err != nil {
				unauthorized(w, "not authorized")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, Identity{
				ID:    user.ID,
				Email: user.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated identity from the request
// context. Returns (Identity{}, false) on unguarded routes.
//
// Usage in handlers:
//
//	id, ok := auth.IdentityFromContext(r.Context())
//	if !ok {
//	    // not authenticated
//	}
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.ID != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
