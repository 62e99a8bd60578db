package session

import (
	"errors"

	"github.com/dmitrijs2005/notehub/internal/client/client"
)

var (
	ErrAuth               = errors.New("authentication failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExchangeFailed     = errors.New("token exchange failed")
	ErrProfileUpdate      = errors.New("profile update failed")
	ErrSignInCancelled    = errors.New("sign-in cancelled")
	ErrNotSignedIn        = errors.New("not signed in")
)

// Error is a session failure with a user-facing message. It matches its
// Kind sentinel and the underlying cause with errors.Is.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// fail wraps cause under kind. The message is the backend's when the cause
// is a rejected request, otherwise fallback followed by the cause.
func fail(kind error, fallback string, cause error) *Error {
	msg := fallback
	var re *client.RequestError
	switch {
	case cause == nil:
	case errors.As(cause, &re) && re.Message != "":
		msg = re.Message
	default:
		msg = fallback + ": " + cause.Error()
	}
	return &Error{Kind: kind, Message: msg, Err: cause}
}
