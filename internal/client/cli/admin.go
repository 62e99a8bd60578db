package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/services"
)

var statusFilters = []string{
	services.StatusAll,
	string(models.NoteStatusPending),
	string(models.NoteStatusApproved),
	string(models.NoteStatusRejected),
}

// loadDashboard fetches the dashboard on first use and reuses it after.
func (a *App) loadDashboard(ctx context.Context) (*services.Dashboard, error) {
	if a.dashboard != nil {
		return a.dashboard, nil
	}
	d, err := a.admin.LoadDashboard(ctx)
	if err != nil {
		return nil, err
	}
	a.dashboard = d
	return d, nil
}

// adminDashboard reloads the dashboard and lists its notes. An optional
// status comes first, the rest of the line is the search text.
func (a *App) adminDashboard(ctx context.Context, args []string) error {
	status := services.StatusAll
	if len(args) > 0 && slices.Contains(statusFilters, strings.ToLower(args[0])) {
		status = strings.ToLower(args[0])
		args = args[1:]
	}
	search := strings.Join(args, " ")

	a.dashboard = nil
	d, err := a.loadDashboard(ctx)
	if err != nil {
		return err
	}

	printStats(a.out, d.Stats)
	printNotes(a.out, d.Filter(search, status), true)
	return nil
}

func (a *App) adminUsers(ctx context.Context, args []string) error {
	d, err := a.loadDashboard(ctx)
	if err != nil {
		return err
	}
	printUsers(a.out, d.FilterUsers(strings.Join(args, " ")))
	return nil
}

// moderate runs a dashboard mutation against the note or user named by
// the first argument.
func (a *App) moderate(ctx context.Context, args []string, what string,
	op func(ctx context.Context, d *services.Dashboard, id string) error) (string, error) {
	id, err := argument(args, what)
	if err != nil {
		return "", err
	}
	d, err := a.loadDashboard(ctx)
	if err != nil {
		return "", err
	}
	return id, op(ctx, d, id)
}

func (a *App) approve(ctx context.Context, args []string) error {
	id, err := a.moderate(ctx, args, "note id", a.admin.Approve)
	if err != nil {
		return err
	}
	printlnFn("Approved", id)
	return nil
}

func (a *App) reject(ctx context.Context, args []string) error {
	id, err := a.moderate(ctx, args, "note id", a.admin.Reject)
	if err != nil {
		return err
	}
	printlnFn("Rejected", id)
	return nil
}

func (a *App) deleteNote(ctx context.Context, args []string) error {
	id, err := argument(args, "note id")
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Delete note %s?", id)) {
		return nil
	}
	if _, err := a.moderate(ctx, args, "note id", a.admin.DeleteNote); err != nil {
		return err
	}
	printlnFn("Deleted note", id)
	return nil
}

func (a *App) deleteUser(ctx context.Context, args []string) error {
	id, err := argument(args, "user id")
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Delete user %s and their notes?", id)) {
		return nil
	}
	if _, err := a.moderate(ctx, args, "user id", a.admin.DeleteUser); err != nil {
		return err
	}
	printlnFn("Deleted user", id)
	return nil
}

func (a *App) restoreWallet(ctx context.Context, args []string) error {
	id, err := a.moderate(ctx, args, "user id", a.admin.RestoreWallet)
	if err != nil {
		return err
	}
	for _, u := range a.dashboard.Users {
		if u.ID == id {
			printlnFn(fmt.Sprintf("Wallet of %s restored to ₹%d", u.Email, u.Wallet))
			return nil
		}
	}
	printlnFn("Wallet restored for", id)
	return nil
}

// confirm asks before a destructive action. A read error counts as no.
func (a *App) confirm(prompt string) bool {
	ok, err := Confirm(a.reader, prompt, a.out)
	if err != nil || !ok {
		printlnFn("Cancelled")
		return false
	}
	return true
}
