package authz

import (
	"context"
	"fmt"

	fga "github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"
)

type OpenFGA struct {
	c *fga.OpenFgaClient
}

type OpenFGAConfig struct {
	APIURL   string `mapstructure:"api_url"`
	StoreID  string `mapstructure:"store_id"`
	APIToken string `mapstructure:"api_token"` // optional
	ModelID  string `mapstructure:"model_id"`  // optional but recommended in prod
}

func NewOpenFGA(cfg OpenFGAConfig) (*OpenFGA, error) {
	if cfg.StoreID == "" {
		return nil, fmt.Errorf("openfga_client_init: store id is required")
	}
	conf := &fga.ClientConfiguration{
		ApiUrl:  cfg.APIURL,
		StoreId: cfg.StoreID,
	}

	// Pin a specific auth model if provided
	if cfg.ModelID != "" {
		conf.AuthorizationModelId = cfg.ModelID
	}
	if cfg.APIToken != "" {
		conf.Credentials = &credentials.Credentials{
			Method: credentials.CredentialsMethodApiToken,
			Config: &credentials.Config{ApiToken: cfg.APIToken},
		}
	}

	client, err := fga.NewSdkClient(conf)
	if err != nil {
		return nil, fmt.Errorf("openfga_client_init: %w", err)
	}
	return &OpenFGA{c: client}, nil
}

func (o *OpenFGA) Check(ctx context.Context, req Request) (Decision, error) {
	checkReq := fga.ClientCheckRequest{
		User:     req.Subject,
		Relation: req.Relation,
		Object:   req.Object,
	}
	if len(req.Context) > 0 {
		c := req.Context
		checkReq.Context = &c
	}

	resp, err := o.c.Check(ctx).Body(checkReq).Execute()
	if err != nil {
		return Decision{}, fmt.Errorf("fga_check_error: %w", err)
	}

	if resp.Allowed != nil && *resp.Allowed {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, Reason: "policy_denied"}, nil
}
