// Package api implements the dashboard REST API and page using chi.
package api

import (
	"net/http"
	"strings"
)

// TokenCookie carries the token for browser requests to the page, the API and
// the event stream.
const TokenCookie = "corner_token"

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, a request is accepted with "Authorization: Bearer
// <token>", a TokenCookie holding the token, or a "token" query parameter.
// A valid query token is stored in TokenCookie so the page's own fetch and
// EventSource calls authenticate without a header.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == token {
				next.ServeHTTP(w, r)
				return
			}
			if c, err := r.Cookie(TokenCookie); err == nil && token != "" && c.Value == token {
				next.ServeHTTP(w, r)
				return
			}
			if token != "" && r.URL.Query().Get("token") == token {
				http.SetCookie(w, &http.Cookie{
					Name:     TokenCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteStrictMode,
				})
				next.ServeHTTP(w, r)
				return
			}
			writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		})
	}
}
