// Package api implements the read-only Folio REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// tokenQueryParam carries the token for clients that cannot set headers,
// such as a browser EventSource on /events.
const tokenQueryParam = "access_token"

// AuthMiddleware returns middleware that checks a Bearer token when enabled.
// The token is read from the Authorization header, falling back to the
// access_token query parameter.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="folio"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.CutPrefix(h, "Bearer ")
	}
	if q := r.URL.Query().Get(tokenQueryParam); q != "" {
		return q, true
	}
	return "", false
}
