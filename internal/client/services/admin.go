package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Dashboard is the admin's local snapshot of counters, notes and users.
type Dashboard struct {
	Stats models.Stats
	Notes []models.Note
	Users []models.AdminUser
}

// StatusAll disables the status filter.
const StatusAll = "all"

// Filter returns the notes whose title or description contains search
// (case-insensitive) and whose status matches status.
func (d *Dashboard) Filter(search, status string) []models.Note {
	q := strings.ToLower(search)
	out := make([]models.Note, 0, len(d.Notes))
	for _, n := range d.Notes {
		if status != "" && status != StatusAll && string(n.Status) != status {
			continue
		}
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Description), q) {
			out = append(out, n)
		}
	}
	return out
}

// FilterUsers returns the users whose name or email contains search.
func (d *Dashboard) FilterUsers(search string) []models.AdminUser {
	q := strings.ToLower(search)
	out := make([]models.AdminUser, 0, len(d.Users))
	for _, u := range d.Users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

func (d *Dashboard) noteIndex(id string) int {
	return slices.IndexFunc(d.Notes, func(n models.Note) bool { return n.ID == id })
}

func (d *Dashboard) userIndex(id string) int {
	return slices.IndexFunc(d.Users, func(u models.AdminUser) bool { return u.ID == id })
}

// AdminService defines the moderation operations of the admin dashboard.
//
// Contract:
//   - LoadDashboard: fetch stats, all notes and all users.
//   - Approve, Reject, DeleteNote: moderate a note and adjust the counters.
//   - DeleteUser: delete a user, then reload the whole dashboard.
//   - RestoreWallet: reset a user's wallet to the amount the server reports.
//
// A failed call leaves the dashboard untouched.
type AdminService interface {
	LoadDashboard(ctx context.Context) (*Dashboard, error)
	Approve(ctx context.Context, d *Dashboard, noteID string) error
	Reject(ctx context.Context, d *Dashboard, noteID string) error
	DeleteNote(ctx context.Context, d *Dashboard, noteID string) error
	DeleteUser(ctx context.Context, d *Dashboard, userID string) error
	RestoreWallet(ctx context.Context, d *Dashboard, userID string) error
}

type adminService struct {
	api    client.AdminAPI
	tokens TokenSource
	log    logging.Logger
}

func NewAdminService(api client.AdminAPI, tokens TokenSource, log logging.Logger) AdminService {
	return &adminService{api: api, tokens: tokens, log: log.With("service", "admin")}
}

func (s *adminService) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tok, err := bearer(gctx, s.tokens)
		if err != nil {
			return err
		}
		d.Stats, err = s.api.AdminStats(gctx, tok)
		return err
	})
	g.Go(func() error {
		tok, err := bearer(gctx, s.tokens)
		if err != nil {
			return err
		}
		d.Notes, err = s.api.AdminNotes(gctx, tok)
		return err
	})
	g.Go(func() error {
		tok, err := bearer(gctx, s.tokens)
		if err != nil {
			return err
		}
		d.Users, err = s.api.AdminUsers(gctx, tok)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error loading dashboard: %w", err)
	}
	return &d, nil
}

// Approve marks the note approved in d and moves one pending note to the
// approved counter. The counters move even when the note is not in d or was
// already approved.
func (s *adminService) Approve(ctx context.Context, d *Dashboard, noteID string) error {
	if d == nil {
		return ErrNilSnapshot
	}
	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return err
	}
	if err := s.api.ApproveNote(ctx, tok, noteID); err != nil {
		return fmt.Errorf("error approving note %s: %w", noteID, err)
	}

	if i := d.noteIndex(noteID); i >= 0 {
		d.Notes[i].Status = models.NoteStatusApproved
	}
	d.Stats.PendingNotes--
	d.Stats.ApprovedNotes++
	s.log.Info(ctx, "note approved", "note", noteID)
	return nil
}

// Reject drops the note from d and decrements the pending counter, whether or
// not the note was listed.
func (s *adminService) Reject(ctx context.Context, d *Dashboard, noteID string) error {
	if d == nil {
		return ErrNilSnapshot
	}
	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return err
	}
	if err := s.api.RejectNote(ctx, tok, noteID); err != nil {
		return fmt.Errorf("error rejecting note %s: %w", noteID, err)
	}

	if i := d.noteIndex(noteID); i >= 0 {
		d.Notes = slices.Delete(d.Notes, i, i+1)
	}
	d.Stats.PendingNotes--
	s.log.Info(ctx, "note rejected", "note", noteID)
	return nil
}

// DeleteNote needs the note in the snapshot: its prior status decides which
// counter drops.
func (s *adminService) DeleteNote(ctx context.Context, d *Dashboard, noteID string) error {
	if d == nil {
		return ErrNilSnapshot
	}
	i := d.noteIndex(noteID)
	if i < 0 {
		return ErrNoteNotFound
	}
	prior := d.Notes[i].Status

	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return err
	}
	if err := s.api.DeleteNote(ctx, tok, noteID); err != nil {
		return fmt.Errorf("error deleting note %s: %w", noteID, err)
	}

	// the list may have been reloaded meanwhile
	if i = d.noteIndex(noteID); i >= 0 {
		d.Notes = slices.Delete(d.Notes, i, i+1)
	}
	d.Stats.TotalNotes--
	switch prior {
	case models.NoteStatusPending:
		d.Stats.PendingNotes--
	case models.NoteStatusApproved:
		d.Stats.ApprovedNotes--
	}
	s.log.Info(ctx, "note deleted", "note", noteID, "status", prior)
	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, d *Dashboard, userID string) error {
	if d == nil {
		return ErrNilSnapshot
	}
	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return err
	}
	if err := s.api.DeleteUser(ctx, tok, userID); err != nil {
		return fmt.Errorf("error deleting user %s: %w", userID, err)
	}
	s.log.Info(ctx, "user deleted", "user", userID)

	fresh, err := s.LoadDashboard(ctx)
	if err != nil {
		return err
	}
	*d = *fresh
	return nil
}

func (s *adminService) RestoreWallet(ctx context.Context, d *Dashboard, userID string) error {
	if d == nil {
		return ErrNilSnapshot
	}
	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return err
	}
	wallet, err := s.api.RestoreWallet(ctx, tok, userID)
	if err != nil {
		return fmt.Errorf("error restoring wallet of %s: %w", userID, err)
	}

	if i := d.userIndex(userID); i >= 0 {
		d.Users[i].Wallet = wallet
	}
	s.log.Info(ctx, "wallet restored", "user", userID, "wallet", wallet)
	return nil
}
