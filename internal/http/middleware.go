package http

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
)

// Middleware is the standard wrapping signature handlers are chained with.
type Middleware func(http.Handler) http.Handler

// Chain wraps h with the given middlewares, applied in the order passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// contextKey avoids key collisions with other packages' context values.
type contextKey string

const dryRunKey contextKey = "dryRun"

// paramsMiddleware handles the query parameters shared across admin
// endpoints: 'verbose' toggles request-scoped debug logging, 'dry_run' is
// carried on the context for handlers that trigger writes.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("incoming request", "method", r.Method, "url", r.URL.String())
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			// Restores on handler return. A migration spawned in the
			// background keeps running at the normal level.
			defer log.SetLevel(originalLevel)
		}

		isDryRun := r.URL.Query().Get("dry_run") == "true"
		ctx := context.WithValue(r.Context(), dryRunKey, isDryRun)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isDryRunFromContext reads the dry_run flag set by paramsMiddleware.
func isDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(dryRunKey).(bool)
	return ok && dryRun
}
