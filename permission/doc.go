// Package permission turns a boolean "may this request proceed" predicate into
// route-level net/http middleware.
//
// A [Verifier] is created once at startup. Each route that needs a gate calls
// [Verifier.Build] with a [Predicate] and gets back a middleware to attach with
// chi's r.With / r.Use (or any func(http.Handler) http.Handler chain). The
// predicate runs on every request; when it returns false the request stops
// there with a [Denial] written as {"detail": "<message>"}.
//
// # Messages
//
// A denial's message is the one passed with [WithMessage], else the verifier's
// default for the status code ([Verifier.SetDefaultMessage]), else
// [FallbackMessage]. Defaults ship for 403 and 404. The registry is meant to be
// filled during startup and only read while serving; it is not locked.
//
// # Predicate errors
//
// An error returned by a predicate is never wrapped. [Verifier.Check] hands it
// back as is; the middleware passes it to the verifier's [ErrorHandler]. The
// default handler writes any [*Denial] found in the chain (so a predicate can
// reject with 401, say) and answers 500 for everything else.
//
// # What this package must NOT do
//
//   - Model roles, resources or ownership. Predicates own that.
//   - Persist rules or cache predicate results between requests.
package permission
