package authz

import (
	"net/http"

	"github.com/TwigBush/permission-go/permission"
)

// RequestFunc derives the tuple to check from an incoming HTTP request.
// Returning an error (a *permission.Denial for client mistakes) aborts the
// check without consulting the authorizer.
type RequestFunc func(r *http.Request) (Request, error)

// Predicate turns an authorizer lookup into a permission predicate.
// Authorizer errors are returned as is.
func Predicate(a Authorizer, build RequestFunc) permission.Predicate {
	return func(r *http.Request) (bool, error) {
		req, err := build(r)
		if err != nil {
			return false, err
		}
		d, err := a.Check(r.Context(), req)
		if err != nil {
			return false, err
		}
		return d.Allowed, nil
	}
}
