package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/TwigBush/permission-go/internal/di"
	"github.com/TwigBush/permission-go/permission"
)

type Config struct {
	Addr        string         `mapstructure:"addr"`
	LogJSON     bool           `mapstructure:"log_json"`
	DevNoStore  bool           `mapstructure:"dev_no_store"`
	CORSOrigins []string       `mapstructure:"cors_origins"`
	Authz       di.AuthzConfig `mapstructure:",squash"`
	// Messages maps a status code ("403") to its default denial message.
	Messages map[string]string `mapstructure:"messages"`
}

func loadConfig(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("addr", ":8000")
	v.SetDefault("log_json", false)
	v.SetDefault("dev_no_store", false)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("authz", "mock")
	v.SetDefault("authz_allow_all", false)
	v.SetDefault("authz_tuples", []string{"user:1#viewer@menu:today", "user:2#cook@kitchen:main"})
	v.SetDefault("fga.api_url", "http://localhost:8080")
	v.SetDefault("fga.store_id", "")
	v.SetDefault("fga.model_id", "")
	v.SetDefault("fga.api_token", "")
	v.SetDefault("messages", map[string]any{"403": "You are not allowed to do this"})

	// Env overrides: PERMIT_ADDR, PERMIT_FGA_STORE_ID, etc.
	v.SetEnvPrefix("PERMIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Read file if it exists, otherwise return defaults without error.
	// SetConfigFile skips viper's search, so a missing file is a plain fs error.
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyMessages installs configured default messages before serving starts.
func applyMessages(verify *permission.Verifier, msgs map[string]string) error {
	for k, msg := range msgs {
		status, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || status < 100 || status > 599 {
			return fmt.Errorf("messages: invalid status code %q", k)
		}
		verify.SetDefaultMessage(status, msg)
	}
	return nil
}
