// Package services contains the application services behind the notehub
// CLI views: admin moderation, the question paper wallet and the note
// catalog. Each call fetches a fresh bearer token and mutates the caller's
// snapshot only after the backend confirmed the change.
package services

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoteNotFound     = errors.New("note not found in the current list")
	ErrPaperNotFound    = errors.New("question paper not found in the current list")
	ErrAlreadyPurchased = errors.New("question paper already purchased")
	ErrNoObjectStorage  = errors.New("no object storage configured")
	ErrNilSnapshot      = errors.New("nil snapshot")
)

// TokenSource yields a bearer token for a single backend call.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

func bearer(ctx context.Context, ts TokenSource) (string, error) {
	tok, err := ts.IDToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get authentication token: %w", err)
	}
	return tok, nil
}
