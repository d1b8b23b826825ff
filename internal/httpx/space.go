package httpx

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const spaceKey contextKey = "space_id"

// SpaceHeader names the header carrying the caller's partition key.
// Membership resolution happens upstream; by the time a request lands
// here the header value is the active space.
const SpaceHeader = "X-Space-ID"

// DefaultSpace is used when no space header is present (single-user
// deployments).
const DefaultSpace = "default"

// SpaceMiddleware resolves the partition key for the request and
// stores it in the context. Every repository call downstream filters
// on it.
func SpaceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		space := strings.TrimSpace(r.Header.Get(SpaceHeader))
		if space == "" {
			space = DefaultSpace
		}
		ctx := context.WithValue(r.Context(), spaceKey, space)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Space returns the partition key for the request.
func Space(r *http.Request) string {
	if v, ok := r.Context().Value(spaceKey).(string); ok && v != "" {
		return v
	}
	return DefaultSpace
}
