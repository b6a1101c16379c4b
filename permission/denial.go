package permission

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/TwigBush/permission-go/internal/httpx"
)

// Denial is the outcome of a predicate that said no.
type Denial struct {
	Status  int
	Message string
}

// Deny builds a Denial. An empty msg falls back to the built-in defaults,
// then the status text, then FallbackMessage.
func Deny(status int, msg string) *Denial {
	if msg == "" {
		msg = builtin.Lookup(status)
		if text := http.StatusText(status); msg == FallbackMessage && text != "" {
			msg = text
		}
	}
	return &Denial{Status: status, Message: msg}
}

func (d *Denial) Error() string {
	return fmt.Sprintf("permission denied: %d %s", d.Status, d.Message)
}

func (d *Denial) StatusCode() int { return d.Status }

// DenialWriter serializes a denial into the response.
type DenialWriter func(w http.ResponseWriter, r *http.Request, d *Denial)

// ErrorHandler receives errors returned by predicates, unwrapped.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// WriteDenial writes {"detail": message} with the denial's status.
func WriteDenial(w http.ResponseWriter, _ *http.Request, d *Denial) {
	httpx.WriteError(w, d.Status, d.Message)
}

func (v *Verifier) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var d *Denial
	if errors.As(err, &d) {
		v.deny(w, r, d)
		return
	}
	httpx.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
