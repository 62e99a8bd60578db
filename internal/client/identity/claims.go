package identity

import (
	"fmt"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// identityFromToken reads the identity claims of a provider ID token. The
// signature is not checked here; the backend verifies every token it gets.
func identityFromToken(idToken string) (*models.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("%w: decode id token: %w", ErrProvider, err)
	}

	uid := claimString(claims, "user_id")
	if uid == "" {
		uid, _ = claims.GetSubject()
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: id token has no subject", ErrProvider)
	}

	return &models.Identity{
		UID:         uid,
		Email:       claimString(claims, "email"),
		DisplayName: claimString(claims, "name"),
		PhotoURL:    claimString(claims, "picture"),
	}, nil
}

func claimString(c jwt.MapClaims, key string) string {
	s, _ := c[key].(string)
	return s
}
