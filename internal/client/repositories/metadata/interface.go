// Package metadata stores transient session artifacts (refresh token,
// identity hints, last error) in the local SQLite database.
package metadata

import (
	"context"
)

// Artifact keys.
const (
	KeyRefreshToken = "refresh_token"
	KeyUID          = "uid"
	KeyEmail        = "email"
	KeyLastError    = "last_error"
)

type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
