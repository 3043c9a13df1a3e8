package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/auth"
	"github.com/sakif/filevault/internal/service"
)

// AuthHandler manages sign-up, login, the Google OAuth flow and session
// management.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignUp / HandleLogin → credential endpoints, set cookies
//   - HandleGoogleLogin          → redirect the browser to Google's consent page
//   - HandleGoogleRedirect       → receive the code, exchange it, set cookies
//   - HandleRefresh              → rotate the token pair from the refresh cookie
//   - HandleMe                   → echo the authenticated identity
//   - HandleLogout               → clear both cookies
type AuthHandler struct {
	service   *service.AuthService
	google    *auth.GoogleProvider
	feBaseURL string
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler. feBaseURL is where the browser is
// sent after a completed OAuth flow.
func NewAuthHandler(svc *service.AuthService, google *auth.GoogleProvider, feBaseURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   svc,
		google:    google,
		feBaseURL: feBaseURL,
		logger:    logger,
	}
}

// HandleSignUp registers a new account and logs it in.
//
// HTTP: POST /api/auth/sign-up
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.SignUp(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}

	setAuthCookies(w, result.Tokens)
	writeJSON(w, http.StatusCreated, result.User)
}

// HandleLogin verifies credentials and starts a session.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}

	setAuthCookies(w, result.Tokens)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleGoogleLogin redirects the user to Google's consent page.
//
// HTTP: GET /api/auth/google
//
// CSRF PROTECTION VIA STATE:
// We generate a random state string and store it in a short-lived cookie.
// When Google calls back, HandleGoogleRedirect verifies the state matches,
// which proves the callback completes a flow this server started.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleRedirect completes the OAuth login flow.
//
// HTTP: GET /api/auth/google-redirect?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a Google profile
//  3. Log in (creating a passwordless account on first visit)
//  4. Set the auth cookies and send the browser back to the frontend
func (h *AuthHandler) HandleGoogleRedirect(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google redirect: state check failed")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Clear the state cookie — it's single-use
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google redirect: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, h.feBaseURL+"?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google redirect: exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.service.LoginWithGoogle(r.Context(), gUser)
	if err != nil {
		h.logger.Error("google redirect: login failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	setAuthCookies(w, result.Tokens)
	http.Redirect(w, r, h.feBaseURL, http.StatusSeeOther)
}

// HandleRefresh rotates the token pair using the refresh cookie.
//
// HTTP: GET /api/auth/refresh
//
// A missing cookie is Forbidden (not Unauthorized): the client had a session
// at some point and should fall back to a full login, not a silent retry.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, apperror.Forbidden("can't find refresh token"))
		return
	}

	result, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	setAuthCookies(w, result.Tokens)
	writeJSON(w, http.StatusOK, result.User)
}

// HandleMe returns the authenticated identity.
//
// HTTP: GET /api/auth/me (guarded)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authenticated"))
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// HandleLogout clears the session cookies.
//
// HTTP: GET /api/auth/logout (guarded)
//
// Since the tokens are stateless JWTs, "logout" just deletes the client-side
// cookies; the tokens stay technically valid until their signed expiry.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
