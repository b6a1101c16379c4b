package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TwigBush/permission-go/internal/authz"
	"github.com/TwigBush/permission-go/internal/httpx"
	"github.com/TwigBush/permission-go/permission"
)

// CheckRequest builds the authorizer tuple for /check/{relation}/{object}.
// The subject is user:<user_id>; without one the caller is unauthorized.
func CheckRequest(r *http.Request) (authz.Request, error) {
	sub := r.URL.Query().Get("user_id")
	if sub == "" {
		return authz.Request{}, permission.Deny(http.StatusUnauthorized, "Unauthorized")
	}
	return authz.Request{
		Subject:  "user:" + sub,
		Relation: chi.URLParam(r, "relation"),
		Object:   chi.URLParam(r, "object"),
	}, nil
}

// Allowed is only reached once the authorizer said yes.
func Allowed(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"allowed":  true,
		"relation": chi.URLParam(r, "relation"),
		"object":   chi.URLParam(r, "object"),
	})
}
