package authz

import "context"

type Decision struct {
	Allowed bool
	Reason  string
}

type Request struct {
	Subject  string         // e.g. "user:2"
	Relation string         // e.g. "cook", "view"
	Object   string         // e.g. "kitchen:main" or "user:1"
	Context  map[string]any // optional: constraints passed to conditions
}

// Authorizer is an external decision point. Permission predicates may consult
// one; the permission package itself does not know about it.
type Authorizer interface {
	Check(ctx context.Context, req Request) (Decision, error)
}
