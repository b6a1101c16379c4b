package di

import (
	"fmt"
	"strings"

	"github.com/TwigBush/permission-go/internal/authz"
)

type AuthzConfig struct {
	Backend  string              `mapstructure:"authz"` // mock | fga | none
	FGA      authz.OpenFGAConfig `mapstructure:"fga"`
	AllowAll bool                `mapstructure:"authz_allow_all"` // mock only
	// Tuples are the "subject#relation@object" grants the mock backend holds.
	Tuples []string `mapstructure:"authz_tuples"`
}

// ProvideAuthorizer returns nil for "none"; the /check route is then not mounted.
func ProvideAuthorizer(cfg AuthzConfig) (authz.Authorizer, error) {
	switch cfg.Backend {
	case "fga":
		a, err := authz.NewOpenFGA(cfg.FGA)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "none":
		return nil, nil
	case "mock", "":
		tuples, err := mockTuples(cfg.Tuples)
		if err != nil {
			return nil, err
		}
		return &authz.Mock{AlwaysAllow: cfg.AllowAll, Tuples: tuples}, nil
	default:
		return nil, fmt.Errorf("unknown authz backend %q", cfg.Backend)
	}
}

func mockTuples(list []string) (map[string]bool, error) {
	tuples := make(map[string]bool, len(list))
	for _, raw := range list {
		t := strings.TrimSpace(raw)
		if t == "" {
			continue
		}
		subject, rest, ok := strings.Cut(t, "#")
		relation, object, ok2 := strings.Cut(rest, "@")
		if !ok || !ok2 || subject == "" || relation == "" || object == "" {
			return nil, fmt.Errorf("authz_tuples: %q is not subject#relation@object", raw)
		}
		tuples[authz.TupleKey(authz.Request{Subject: subject, Relation: relation, Object: object})] = true
	}
	return tuples, nil
}
