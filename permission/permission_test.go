package permission

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietVerifier(opts ...Option) *Verifier {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

func always(b bool) Predicate {
	return Bool(func(*http.Request) bool { return b })
}

func newReq() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/", nil)
}

func TestCheckGranted(t *testing.T) {
	v := quietVerifier()
	assert.NoError(t, v.Check(newReq(), always(true)))
}

func TestCheckDeniedDefaults(t *testing.T) {
	v := quietVerifier()

	err := v.Check(newReq(), always(false))

	var d *Denial
	require.ErrorAs(t, err, &d)
	assert.Equal(t, http.StatusForbidden, d.Status)
	assert.Equal(t, "Forbidden", d.Message)
}

func TestCheckStatusWithoutRegistryEntry(t *testing.T) {
	v := quietVerifier(WithMessages(&Messages{}))

	err := v.Check(newReq(), always(false), WithStatus(http.StatusNotFound))

	var d *Denial
	require.ErrorAs(t, err, &d)
	assert.Equal(t, http.StatusNotFound, d.Status)
	assert.Equal(t, FallbackMessage, d.Message)
}

func TestCheckStatusWithRegistryEntry(t *testing.T) {
	v := quietVerifier(WithMessages(&Messages{}))
	v.SetDefaultMessage(http.StatusNotFound, "Not Found")

	err := v.Check(newReq(), always(false), WithStatus(http.StatusNotFound))

	var d *Denial
	require.ErrorAs(t, err, &d)
	assert.Equal(t, "Not Found", d.Message)
}

func TestCheckExplicitMessageWins(t *testing.T) {
	v := quietVerifier()
	v.SetDefaultMessage(http.StatusForbidden, "You are not allowed to do this")

	err := v.Check(newReq(), always(false), WithMessage("Only wizards allowed"))

	var d *Denial
	require.ErrorAs(t, err, &d)
	assert.Equal(t, "Only wizards allowed", d.Message)
}

func TestCheckEmptyMessageCountsAsUnset(t *testing.T) {
	v := quietVerifier()

	err := v.Check(newReq(), always(false), WithMessage(""))

	var d *Denial
	require.ErrorAs(t, err, &d)
	assert.Equal(t, "Forbidden", d.Message)
}

func TestSetDefaultMessageIdempotent(t *testing.T) {
	v := quietVerifier()
	v.SetDefaultMessage(http.StatusTeapot, "Only tea may be brewed")
	first := v.Check(newReq(), always(false), WithStatus(http.StatusTeapot))
	v.SetDefaultMessage(http.StatusTeapot, "Only tea may be brewed")
	second := v.Check(newReq(), always(false), WithStatus(http.StatusTeapot))

	assert.Equal(t, first, second)
	assert.EqualError(t, second, "permission denied: 418 Only tea may be brewed")
}

type wandError struct{}

func (wandError) Error() string { return "wand broken" }

func TestCheckPredicateErrorPropagatesUnchanged(t *testing.T) {
	v := quietVerifier()
	boom := wandError{}

	err := v.Check(newReq(), func(*http.Request) (bool, error) { return false, boom })

	assert.Equal(t, error(boom), err)
	var d *Denial
	assert.False(t, errors.As(err, &d))
}

func TestPredicateSeesRequest(t *testing.T) {
	v := quietVerifier()
	p := Bool(func(r *http.Request) bool { return r.URL.Query().Get("permitted") == "true" })

	ok := httptest.NewRequest(http.MethodGet, "/?permitted=true", nil)
	no := httptest.NewRequest(http.MethodGet, "/?permitted=false", nil)

	assert.NoError(t, v.Check(ok, p))
	assert.Error(t, v.Check(no, p))
}

func TestBuildPanicsOnMisuse(t *testing.T) {
	v := quietVerifier()

	assert.Panics(t, func() { v.Build(nil) })
	assert.Panics(t, func() { v.Build(always(true), WithStatus(42)) })
	assert.Panics(t, func() { v.Build(always(true), WithStatus(600)) })
	assert.NotPanics(t, func() { v.Build(always(true), WithStatus(http.StatusTeapot)) })
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareGrantedCallsNext(t *testing.T) {
	v := quietVerifier()
	var called bool
	h := v.Build(always(true))(okHandler(&called))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMiddlewareDeniedWritesDetail(t *testing.T) {
	v := quietVerifier()
	var called bool
	h := v.Build(always(false))(okHandler(&called))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"Forbidden"}`, rec.Body.String())
}

func TestMiddlewareResolvesMessageAtRequestTime(t *testing.T) {
	v := quietVerifier()
	var called bool
	h := v.Build(always(false), WithStatus(http.StatusTeapot))(okHandler(&called))

	v.SetDefaultMessage(http.StatusTeapot, "Only tea may be brewed")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"detail":"Only tea may be brewed"}`, rec.Body.String())
}

func TestMiddlewarePredicateDenialError(t *testing.T) {
	v := quietVerifier()
	var called bool
	p := func(*http.Request) (bool, error) { return false, Deny(http.StatusUnauthorized, "") }
	h := v.Build(p)(okHandler(&called))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Unauthorized"}`, rec.Body.String())
}

func TestMiddlewarePredicateFailureIs500(t *testing.T) {
	v := quietVerifier()
	var called bool
	p := func(*http.Request) (bool, error) { return false, errors.New("db down") }
	h := v.Build(p)(okHandler(&called))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, rec.Body.String())
}

func TestMiddlewareCustomHandlers(t *testing.T) {
	boom := errors.New("db down")
	var gotErr error
	var gotDenial *Denial
	v := quietVerifier(
		WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			gotErr = err
			w.WriteHeader(http.StatusServiceUnavailable)
		}),
		WithDenialWriter(func(w http.ResponseWriter, r *http.Request, d *Denial) {
			gotDenial = d
			http.Error(w, d.Message, d.Status)
		}),
	)
	var called bool

	rec := httptest.NewRecorder()
	v.Build(func(*http.Request) (bool, error) { return false, boom })(okHandler(&called)).ServeHTTP(rec, newReq())
	assert.Same(t, boom, gotErr)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	v.Build(always(false), WithMessage("Only wizards allowed"))(okHandler(&called)).ServeHTTP(rec, newReq())
	require.NotNil(t, gotDenial)
	assert.Equal(t, "Only wizards allowed", gotDenial.Message)
	assert.Equal(t, "Only wizards allowed\n", rec.Body.String())
	assert.False(t, called)
}

func TestSharedMessagesAcrossVerifiers(t *testing.T) {
	m := NewMessages()
	a := quietVerifier(WithMessages(m))
	b := quietVerifier(WithMessages(m))

	a.SetDefaultMessage(http.StatusForbidden, "This action is forbidden")

	var d *Denial
	require.ErrorAs(t, b.Check(newReq(), always(false)), &d)
	assert.Equal(t, "This action is forbidden", d.Message)
	assert.Same(t, m, b.Messages())
}

func TestZeroValueVerifier(t *testing.T) {
	var v Verifier
	var called bool

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		v.Build(always(false), WithStatus(http.StatusNotFound))(okHandler(&called)).ServeHTTP(rec, newReq())
	})
	assert.False(t, called)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	p := func(*http.Request) (bool, error) { return false, errors.New("db down") }
	assert.NotPanics(t, func() { v.Build(p)(okHandler(&called)).ServeHTTP(rec, newReq()) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	v.SetDefaultMessage(http.StatusNotFound, "The resource does not exist")
	var d *Denial
	require.ErrorAs(t, v.Check(newReq(), always(false), WithStatus(http.StatusNotFound)), &d)
	assert.Equal(t, "The resource does not exist", d.Message)
	assert.Equal(t, "Not Found", builtin.Lookup(http.StatusNotFound))
}
