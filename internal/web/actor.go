package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/jemaat/internal/core"
)

// actorHeader carries the id of the administrator making the request.
// Authentication happens upstream; the header is trusted as given.
const actorHeader = "X-Actor-ID"

// withActor stores the actor header in the request context.
func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := strings.TrimSpace(r.Header.Get(actorHeader)); actor != "" {
			r = r.WithContext(core.ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}
