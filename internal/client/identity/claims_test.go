package identity

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityFromToken(t *testing.T) {
	t.Run("user_id wins over sub", func(t *testing.T) {
		id, err := identityFromToken(mintToken(t, jwt.MapClaims{"user_id": "a", "sub": "b", "email": "e@x", "name": "N", "picture": "P"}))
		require.NoError(t, err)
		assert.Equal(t, "a", id.UID)
		assert.Equal(t, "e@x", id.Email)
		assert.Equal(t, "N", id.DisplayName)
		assert.Equal(t, "P", id.PhotoURL)
	})

	t.Run("sub fallback", func(t *testing.T) {
		id, err := identityFromToken(mintToken(t, jwt.MapClaims{"sub": "b"}))
		require.NoError(t, err)
		assert.Equal(t, "b", id.UID)
	})

	t.Run("no subject", func(t *testing.T) {
		_, err := identityFromToken(mintToken(t, jwt.MapClaims{"email": "e@x"}))
		require.ErrorIs(t, err, ErrProvider)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := identityFromToken("not-a-jwt")
		require.ErrorIs(t, err, ErrProvider)
	})
}
