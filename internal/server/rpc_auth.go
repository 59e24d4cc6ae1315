package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// bearerToken extracts the client token from a request to the publication
// RPC surface. Browser pages can set the Authorization header on fetch
// calls but not on WebSocket dials, so the token may also ride on a
// ?token= query parameter; the header wins when both are present.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if !strings.HasPrefix(auth, "Bearer ") {
			return ""
		}
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// validToken reports whether token matches the configured RPC secret,
// in constant time. An empty secret disables the surface outright rather
// than leaving it open.
func validToken(secret, token string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

// requireToken gates the publication RPC surface behind the shared secret.
// Rejections answer with a JSON-RPC error body so browser clients get a
// structured error instead of a bare 401 page.
func requireToken(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validToken(secret, bearerToken(r)) {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"error": map[string]any{
			"code":    -32600,
			"message": "Unauthorized",
		},
		"id": nil,
	})
}
