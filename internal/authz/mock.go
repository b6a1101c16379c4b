package authz

import "context"

// Mock allows everything when AlwaysAllow is set, otherwise only the
// listed "subject#relation@object" tuples.
type Mock struct {
	AlwaysAllow bool
	Tuples      map[string]bool
}

func TupleKey(req Request) string {
	return req.Subject + "#" + req.Relation + "@" + req.Object
}

func (m *Mock) Check(ctx context.Context, req Request) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	if m.AlwaysAllow || m.Tuples[TupleKey(req)] {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, Reason: "mock_deny"}, nil
}
