// Package kitchen is the demo domain: waiters and cooks, and the permission
// predicates that decide what each may do.
package kitchen

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/TwigBush/permission-go/permission"
)

// Role decides which kitchen actions a user may take.
type Role string

const (
	Waiter Role = "Waiter"
	Cook   Role = "Cook"
)

// User is a member of staff, serialized as {"user_id", "role"}.
type User struct {
	UserID int  `json:"user_id"`
	Role   Role `json:"role"`
}

// Directory is a read-only user table.
type Directory struct {
	users map[int]User
}

func NewDirectory(users ...User) *Directory {
	d := &Directory{users: make(map[int]User, len(users))}
	for _, u := range users {
		d.users[u.UserID] = u
	}
	return d
}

// DefaultDirectory holds user 1 (Waiter) and user 2 (Cook).
func DefaultDirectory() *Directory {
	return NewDirectory(User{UserID: 1, Role: Waiter}, User{UserID: 2, Role: Cook})
}

func (d *Directory) Get(ctx context.Context, id int) (User, bool) {
	if ctx.Err() != nil {
		return User{}, false
	}
	u, ok := d.users[id]
	return u, ok
}

// CurrentUser resolves the caller from the user_id query parameter.
// A missing, malformed or unknown id is a 401.
func (d *Directory) CurrentUser(r *http.Request) (User, error) {
	id, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil {
		return User{}, permission.Deny(http.StatusUnauthorized, "Unauthorized")
	}
	u, ok := d.Get(r.Context(), id)
	if !ok {
		return User{}, permission.Deny(http.StatusUnauthorized, "Unauthorized")
	}
	return u, nil
}

// MayCook: only cooks may cook.
func MayCook(d *Directory) permission.Predicate {
	return func(r *http.Request) (bool, error) {
		u, err := d.CurrentUser(r)
		if err != nil {
			return false, err
		}
		return u.Role == Cook, nil
	}
}

// MayViewUser lets users see only their own details. The viewed id comes
// from the {viewedUserID} path parameter.
func MayViewUser(d *Directory) permission.Predicate {
	return func(r *http.Request) (bool, error) {
		u, err := d.CurrentUser(r)
		if err != nil {
			return false, err
		}
		viewed, err := strconv.Atoi(chi.URLParam(r, "viewedUserID"))
		if err != nil {
			return false, nil
		}
		return viewed == u.UserID, nil
	}
}
