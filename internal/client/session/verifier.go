package session

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/client/models"
)

// VerifyAPI is the backend call the verifier depends on.
type VerifyAPI interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// Verifier turns a provider ID token into the application user record.
type Verifier struct {
	api            VerifyAPI
	operatorAvatar string
}

func NewVerifier(api VerifyAPI, operatorAvatar string) *Verifier {
	return &Verifier{api: api, operatorAvatar: operatorAvatar}
}

// Verify makes one verification request. Any failure, including a
// malformed reply, is an ErrAuth. It never retries.
func (v *Verifier) Verify(ctx context.Context, ident models.Identity, idToken string) (*models.User, error) {
	backend, err := v.api.Verify(ctx, idToken)
	if err != nil {
		return nil, fail(ErrAuth, "Failed to verify user", err)
	}
	return MergeUser(ident, backend, v.operatorAvatar), nil
}
