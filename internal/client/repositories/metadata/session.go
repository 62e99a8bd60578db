package metadata

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/notehub/internal/dbx"
)

// Session is the set of artifacts kept for one signed-in account.
type Session struct {
	RefreshToken string
	UID          string
	Email        string
}

// SessionStore reads and writes Session atomically.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save replaces the stored session in one transaction.
func (s *SessionStore) Save(ctx context.Context, sess Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for k, v := range map[string]string{
			KeyRefreshToken: sess.RefreshToken,
			KeyUID:          sess.UID,
			KeyEmail:        sess.Email,
		} {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return repo.Delete(ctx, KeyLastError)
	})
}

// Load returns the stored session. ok is false when no refresh token is
// stored.
func (s *SessionStore) Load(ctx context.Context) (sess Session, ok bool, err error) {
	all, err := NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return Session{}, false, err
	}
	sess = Session{
		RefreshToken: all[KeyRefreshToken],
		UID:          all[KeyUID],
		Email:        all[KeyEmail],
	}
	return sess, sess.RefreshToken != "", nil
}

// RecordError keeps the last session error message for the next run.
func (s *SessionStore) RecordError(ctx context.Context, msg string) error {
	return NewSQLiteRepository(s.db).Set(ctx, KeyLastError, msg)
}

func (s *SessionStore) LastError(ctx context.Context) (string, error) {
	v, _, err := NewSQLiteRepository(s.db).Get(ctx, KeyLastError)
	return v, err
}

// Clear removes every artifact.
func (s *SessionStore) Clear(ctx context.Context) error {
	return NewSQLiteRepository(s.db).Clear(ctx)
}
