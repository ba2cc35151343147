// Package nav models the application's views as typed routes and gates the
// authenticated ones behind the session.
package nav

import (
	"fmt"
	"strconv"
	"strings"
)

// Name identifies a view.
type Name string

// Known views.
const (
	Home            Name = "home"
	Login           Name = "login"
	Signup          Name = "signup"
	RecoverPassword Name = "recover-password"
	VerifyCode      Name = "verify-code"
	ResetPassword   Name = "reset-password"
	Main            Name = "principal"
	Profile         Name = "profile"
	UpdatePassword  Name = "update-password"
)

var protected = map[Name]bool{
	Main:           true,
	Profile:        true,
	UpdatePassword: true,
}

// Route is a view plus its optional transaction scope.
type Route struct {
	Name          Name
	TransactionID int64
}

// To returns an unscoped route.
func To(name Name) Route {
	return Route{Name: name}
}

// Transaction returns the main view scoped to a transaction.
func Transaction(id int64) Route {
	return Route{Name: Main, TransactionID: id}
}

// Protected reports whether the route requires a session.
func (r Route) Protected() bool {
	return protected[r.Name]
}

// Scoped reports whether the route carries a transaction id.
func (r Route) Scoped() bool {
	return r.Name == Main && r.TransactionID > 0
}

// Path renders the route as a URL-like path, e.g. "/principal/7".
func (r Route) Path() string {
	if r.Name == Home || r.Name == "" {
		return "/"
	}
	if r.Scoped() {
		return fmt.Sprintf("/%s/%d", r.Name, r.TransactionID)
	}
	return "/" + string(r.Name)
}

func (r Route) String() string {
	return r.Path()
}

// Parse converts a path back into a route.
func Parse(path string) (Route, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return To(Home), nil
	}

	parts := strings.Split(trimmed, "/")
	name := Name(parts[0])
	if !known(name) {
		return Route{}, fmt.Errorf("unknown route %q", path)
	}

	switch {
	case len(parts) == 1:
		return To(name), nil
	case len(parts) == 2 && name == Main:
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			return Route{}, fmt.Errorf("invalid transaction id in %q", path)
		}
		return Transaction(id), nil
	default:
		return Route{}, fmt.Errorf("unknown route %q", path)
	}
}

func known(name Name) bool {
	switch name {
	case Home, Login, Signup, RecoverPassword, VerifyCode, ResetPassword, Main, Profile, UpdatePassword:
		return true
	}
	return false
}

// Resolve applies the authentication gate: protected routes resolve to the
// login view when there is no session.
func Resolve(route Route, authenticated bool) Route {
	if route.Protected() && !authenticated {
		return To(Login)
	}
	return route
}
