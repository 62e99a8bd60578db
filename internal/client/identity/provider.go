// Package identity adapts a Firebase Auth compatible identity provider:
// interactive Google sign-in, custom-token redemption, token refresh and an
// ordered stream of sign-in state changes.
package identity

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/notehub/internal/client/models"
)

var (
	ErrCancelled     = errors.New("sign-in cancelled")
	ErrNoCurrentUser = errors.New("no current user")
	ErrProvider      = errors.New("identity provider error")
)

// Event is a sign-in state change. A nil Identity means signed out. Seq
// increases with every change.
type Event struct {
	Seq      uint64
	Identity *models.Identity
}

// Provider is the identity provider contract used by the session layer.
type Provider interface {
	// Subscribe registers fn for state changes and returns the unsubscribe
	// handle. Events reach fn one at a time, in order.
	Subscribe(fn func(Event)) (unsubscribe func())
	SignInInteractive(ctx context.Context) (*models.Identity, error)
	SignInWithCustomToken(ctx context.Context, token string) (*models.Identity, error)
	SignOut(ctx context.Context) error
	CurrentUser() *models.Identity
	// IDToken returns a fresh bearer token for the current user.
	IDToken(ctx context.Context) (string, error)
	UpdatePhotoURL(ctx context.Context, photoURL string) error
}
