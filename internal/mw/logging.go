package mw

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/TwigBush/permission-go/internal/httpx"
	"github.com/TwigBush/permission-go/internal/trace"
)

type LogOpts struct {
	Logger        *slog.Logger
	SkipPaths     []string
	RedactHeaders []string // matched case-insensitively; Authorization and Cookie are always redacted
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions
}

func Logger(opts LogOpts) func(http.Handler) http.Handler {
	redact := []string{"authorization", "cookie", "set-cookie"}
	for _, h := range opts.RedactHeaders {
		redact = append(redact, strings.ToLower(h))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPreflight(r) || slices.Contains(opts.SkipPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			log := opts.Logger
			if log == nil {
				log = slog.Default()
			}

			start := time.Now()
			rec := httpx.NewRecorder(w)
			next.ServeHTTP(rec, r)
			dur := time.Since(start)

			// one-liner summary
			log.Info("req",
				"trace", trace.From(r.Context()),
				"m", r.Method,
				"path", r.URL.Path,
				"status", rec.Status,
				"ms", dur.Milliseconds(),
				"bytes", rec.Bytes,
			)

			// denials and failures get the headers too
			if rec.Status >= 400 {
				h := map[string]string{}
				for k, vv := range r.Header {
					if len(vv) == 0 {
						continue
					}
					vl := vv[0]
					if slices.Contains(redact, strings.ToLower(k)) {
						vl = "***redacted***"
					}
					h[k] = vl
				}
				log.Warn("req_detail",
					"trace", trace.From(r.Context()),
					"m", r.Method, "path", r.URL.Path,
					"status", rec.Status, "ms", dur.Milliseconds(),
					"headers", h,
				)
			}
		})
	}
}
