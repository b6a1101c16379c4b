package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TwigBush/permission-go/internal/di"
	"github.com/TwigBush/permission-go/internal/kitchen"
	"github.com/TwigBush/permission-go/internal/server"
	"github.com/TwigBush/permission-go/permission"
)

func cmdServe() *cobra.Command {
	var addr string
	var logJSON bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the kitchen demo API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("log-json") {
				cfg.LogJSON = logJSON
			}

			log := newLogger(cmd.ErrOrStderr(), cfg.LogJSON)
			slog.SetDefault(log)

			h, err := buildHandler(cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg.Addr, h, log)
		},
	}
	c.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	c.Flags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
	return c
}

func newLogger(w io.Writer, json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

// buildHandler wires the verifier, its default messages and the routes.
// All registry writes happen here, before the server accepts requests.
func buildHandler(cfg *Config, log *slog.Logger) (http.Handler, error) {
	verify := permission.New(permission.WithLogger(log))
	if err := applyMessages(verify, cfg.Messages); err != nil {
		return nil, err
	}

	a, err := di.ProvideAuthorizer(cfg.Authz)
	if err != nil {
		return nil, fmt.Errorf("authorizer: %w", err)
	}

	return server.BuildRouter(server.Deps{
		Verifier:   verify,
		Directory:  kitchen.DefaultDirectory(),
		Authorizer: a,
	}, server.Options{
		CORSOrigins: cfg.CORSOrigins,
		DevNoStore:  cfg.DevNoStore,
		Logger:      log,
	}), nil
}

func serve(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
