package permission

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Predicate reports whether the request may proceed. Everything it needs
// (path and query params, headers, values stored in the context by earlier
// middleware) comes from r. It may block; r.Context() carries cancellation.
type Predicate func(r *http.Request) (bool, error)

// Bool adapts a check that cannot fail.
func Bool(fn func(r *http.Request) bool) Predicate {
	return func(r *http.Request) (bool, error) { return fn(r), nil }
}

// Verifier builds permission middleware that shares one message registry.
// The zero value is usable and behaves like New().
type Verifier struct {
	messages    *Messages
	log         *slog.Logger
	writeDenial DenialWriter
	onError     ErrorHandler
}

// Option configures a Verifier in New.
type Option func(*Verifier)

// WithMessages shares an existing registry instead of a fresh NewMessages().
func WithMessages(m *Messages) Option { return func(v *Verifier) { v.messages = m } }

// WithLogger sets the logger for denials and predicate failures.
// Defaults to slog.Default() at log time.
func WithLogger(l *slog.Logger) Option { return func(v *Verifier) { v.log = l } }

// WithDenialWriter replaces WriteDenial.
func WithDenialWriter(fn DenialWriter) Option {
	return func(v *Verifier) { v.writeDenial = fn }
}

// WithErrorHandler replaces the default handling of predicate errors.
func WithErrorHandler(fn ErrorHandler) Option { return func(v *Verifier) { v.onError = fn } }

// New creates a verifier. No option is required.
func New(opts ...Option) *Verifier {
	v := &Verifier{}
	for _, o := range opts {
		o(v)
	}
	if v.messages == nil {
		v.messages = NewMessages()
	}
	return v
}

// SetDefaultMessage sets the message used by denials with this status that
// carry no message of their own, including checks built earlier.
func (v *Verifier) SetDefaultMessage(status int, msg string) {
	v.Messages().Set(status, msg)
}

// Messages exposes the registry the verifier resolves against. Like
// SetDefaultMessage it belongs to startup: on a zero Verifier it allocates.
func (v *Verifier) Messages() *Messages {
	if v.messages == nil {
		v.messages = NewMessages()
	}
	return v.messages
}

// registry is the read path used while serving; it never writes.
func (v *Verifier) registry() *Messages {
	if v.messages != nil {
		return v.messages
	}
	return builtin
}

func (v *Verifier) deny(w http.ResponseWriter, r *http.Request, d *Denial) {
	if v.writeDenial != nil {
		v.writeDenial(w, r, d)
		return
	}
	WriteDenial(w, r, d)
}

func (v *Verifier) fail(w http.ResponseWriter, r *http.Request, err error) {
	if v.onError != nil {
		v.onError(w, r, err)
		return
	}
	v.handleError(w, r, err)
}

type checkCfg struct {
	status  int
	message string
}

// CheckOption configures a single Build or Check.
type CheckOption func(*checkCfg)

// WithStatus sets the denial status. Defaults to 403.
func WithStatus(code int) CheckOption { return func(c *checkCfg) { c.status = code } }

// WithMessage overrides the registry. An empty msg counts as unset.
func WithMessage(msg string) CheckOption { return func(c *checkCfg) { c.message = msg } }

func newCheckCfg(opts []CheckOption) checkCfg {
	c := checkCfg{status: http.StatusForbidden}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// Check evaluates p once. It returns nil when granted, a *Denial when denied
// and the predicate's own error, untouched, when p fails.
func (v *Verifier) Check(r *http.Request, p Predicate, opts ...CheckOption) error {
	d, err := v.decide(r, p, newCheckCfg(opts))
	if err != nil {
		return err
	}
	if d != nil {
		return d
	}
	return nil
}

func (v *Verifier) decide(r *http.Request, p Predicate, c checkCfg) (*Denial, error) {
	ok, err := p(r)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}
	msg := c.message
	if msg == "" {
		msg = v.registry().Lookup(c.status)
	}
	return &Denial{Status: c.status, Message: msg}, nil
}

// Build returns middleware that runs p before next on every request.
// It panics on a nil predicate or a status outside 100..599, which are
// route-registration mistakes.
func (v *Verifier) Build(p Predicate, opts ...CheckOption) func(http.Handler) http.Handler {
	if p == nil {
		panic("permission: Build called with a nil predicate")
	}
	c := newCheckCfg(opts)
	if c.status < 100 || c.status > 599 {
		panic(fmt.Sprintf("permission: invalid status code %d", c.status))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := v.decide(r, p, c)
			if err != nil {
				v.logFailure(r, err)
				v.fail(w, r, err)
				return
			}
			if d != nil {
				v.logger().Info("permission_denied",
					"m", r.Method,
					"path", r.URL.Path,
					"status", d.Status,
					"msg", d.Message,
				)
				v.deny(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (v *Verifier) logFailure(r *http.Request, err error) {
	var d *Denial
	if errors.As(err, &d) {
		v.logger().Info("permission_check_rejected",
			"m", r.Method, "path", r.URL.Path,
			"status", d.Status, "err", err)
		return
	}
	v.logger().Error("permission_check_failed",
		"m", r.Method, "path", r.URL.Path, "err", err)
}

func (v *Verifier) logger() *slog.Logger {
	if v.log != nil {
		return v.log
	}
	return slog.Default()
}
