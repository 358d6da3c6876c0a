// Package api implements the scraps REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// bearerAuth rejects requests that do not carry "Authorization: Bearer
// <token>". With allowQuery the token may instead come from the
// access_token query parameter, since EventSource cannot set headers.
func bearerAuth(token string, allowQuery bool) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok && allowQuery {
				got, ok = r.URL.Query().Get("access_token"), true
			}
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="scraps"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
