package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/TwigBush/permission-go/internal/authz"
	"github.com/TwigBush/permission-go/internal/handlers"
	"github.com/TwigBush/permission-go/internal/kitchen"
	mw2 "github.com/TwigBush/permission-go/internal/mw"
	"github.com/TwigBush/permission-go/permission"
)

type Options struct {
	CORSOrigins []string
	DevNoStore  bool
	Logger      *slog.Logger
}

type Deps struct {
	Verifier   *permission.Verifier
	Directory  *kitchen.Directory
	Authorizer authz.Authorizer
}

func BuildRouter(d Deps, opts Options) http.Handler {
	r := chi.NewRouter()
	if opts.DevNoStore {
		r.Use(mw2.NoStore)
	}

	// baseline
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         300,
		}))
	}

	// tracing + logger
	r.Use(mw2.Trace())
	r.Use(mw2.Logger(mw2.LogOpts{
		Logger:        opts.Logger,
		SkipPaths:     []string{"/healthz", "/version"},
		RedactHeaders: []string{"X-Api-Key"},
	}))

	r.Get("/healthz", handlers.Healthz)
	r.Get("/version", handlers.Version)

	verify := d.Verifier
	kh := handlers.NewKitchenHandler(d.Directory)

	// Users may only view their own details. Don't reveal whether others exist.
	r.With(verify.Build(
		kitchen.MayViewUser(d.Directory),
		permission.WithStatus(http.StatusNotFound),
		permission.WithMessage("No such user"),
	)).Get("/users/{viewedUserID}", kh.ViewUser)

	// Only cooks are trusted with this.
	r.With(verify.Build(kitchen.MayCook(d.Directory))).Post("/cook", kh.Cook)

	if d.Authorizer != nil {
		r.With(verify.Build(authz.Predicate(d.Authorizer, handlers.CheckRequest))).
			Get("/check/{relation}/{object}", handlers.Allowed)
	}

	return r
}
