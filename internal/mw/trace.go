package mw

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/TwigBush/permission-go/internal/trace"
)

// Trace reuses an inbound trace id, then chi's request id, then mints one.
func Trace() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(trace.Header)
			if id == "" {
				id = middleware.GetReqID(r.Context())
			}
			if id == "" {
				id = trace.NewID()
			}
			ctx := trace.With(r.Context(), id)

			// echo back on response
			w.Header().Set(trace.Header, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
