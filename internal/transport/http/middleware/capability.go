package middleware

import (
	"net/http"

	"github.com/go-member-gate/internal/domain"
)

// RequireCapability allows the request through when the actor holds any of caps.
// Administrators pass every check.
func RequireCapability(caps ...domain.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
				return
			}
			for _, c := range caps {
				if actor.Can(c) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "forbidden", "missing capability")
		})
	}
}
