package handler

import (
	"net/http"
	"time"

	"github.com/sakif/filevault/internal/auth"
	"github.com/sakif/filevault/internal/service"
)

// Cookie lifetimes. The refresh cookie intentionally lives longer than the
// signed refresh token inside it (24h): a stale cookie simply fails
// verification at the refresh endpoint instead of vanishing silently, which
// lets the frontend distinguish "session expired" from "never logged in".
const (
	accessCookieMaxAge  = int(time.Hour / time.Second)
	refreshCookieMaxAge = int(7 * 24 * time.Hour / time.Second)
)

const refreshTokenCookie = "refreshToken"

// setAuthCookies stores the token pair in the browser.
//
// COOKIE ATTRIBUTES:
//   - NOT HttpOnly: the SPA reads the access token to decide whether to show
//     the logged-in UI without a round trip.
//   - SameSite=None + Secure: the API and the frontend live on different
//     origins, so the cookies must ride along on cross-site XHR. Browsers
//     only allow SameSite=None together with Secure.
func setAuthCookies(w http.ResponseWriter, tokens service.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    tokens.Access,
		Path:     "/",
		MaxAge:   accessCookieMaxAge,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.Refresh,
		Path:     "/",
		MaxAge:   refreshCookieMaxAge,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// clearAuthCookies expires both cookies. The tokens themselves stay valid
// until their signed expiry — logout is purely client-side state removal.
func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{auth.AccessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		})
	}
}
