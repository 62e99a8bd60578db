// Package guard decides, from session state alone, whether a view may be
// shown.
package guard

import "github.com/dmitrijs2005/notehub/internal/client/session"

type Requirement int

const (
	None Requirement = iota
	Auth
	Admin
)

func (r Requirement) String() string {
	switch r {
	case Auth:
		return "auth"
	case Admin:
		return "admin"
	default:
		return "none"
	}
}

type AuthState int

const (
	Loading AuthState = iota
	Anonymous
	Authenticated
	AuthenticatedAdmin
)

func (s AuthState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case AuthenticatedAdmin:
		return "admin"
	default:
		return "loading"
	}
}

type Decision int

const (
	Render Decision = iota
	Spinner
	RedirectSignIn
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Spinner:
		return "spinner"
	case RedirectSignIn:
		return "redirect-sign-in"
	case RedirectHome:
		return "redirect-home"
	default:
		return "render"
	}
}

// Derive classifies a session snapshot.
func Derive(st session.State) AuthState {
	switch {
	case st.Loading:
		return Loading
	case st.User == nil:
		return Anonymous
	case st.User.IsAdmin:
		return AuthenticatedAdmin
	default:
		return Authenticated
	}
}

// Evaluate returns what to do with a view that has requirement req. While
// the session is loading nothing is redirected.
func Evaluate(st session.State, req Requirement) Decision {
	as := Derive(st)
	if as == Loading {
		return Spinner
	}

	switch req {
	case Auth:
		if as == Anonymous {
			return RedirectSignIn
		}
	case Admin:
		if as != AuthenticatedAdmin {
			return RedirectHome
		}
	}
	return Render
}
