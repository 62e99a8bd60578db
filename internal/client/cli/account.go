package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/session"
	"github.com/dmitrijs2005/notehub/internal/client/storage"
)

func (a *App) home(ctx context.Context, _ []string) error {
	printlnFn("notehub: share and find study notes, buy past question papers")
	st := a.notes.SiteStats(ctx)
	fmt.Fprintf(a.out, "Notes: %d  Downloads: %d  Students: %d  Question papers: %d\n",
		st.TotalNotes, st.TotalDownloads, st.TotalUsers, st.TotalQuestionPapers)
	u := a.user()
	switch {
	case u == nil:
		printlnFn("Browse with 'notes', sign in with 'signin' to upload and download")
	case u.IsAdmin:
		printlnFn("Moderate notes and users with 'admin'")
	default:
		printlnFn(fmt.Sprintf("Hello %s, your wallet has ₹%d", displayName(u), u.Wallet))
	}
	return nil
}

func (a *App) about(ctx context.Context, _ []string) error {
	printlnFn("Students upload notes, an admin reviews them, approved notes are free for everyone.")
	printlnFn("Question papers are bought with wallet credit.")
	return nil
}

func (a *App) signIn(ctx context.Context, _ []string) error {
	if u := a.user(); u != nil {
		printlnFn("Already signed in as", displayName(u))
		return nil
	}
	u, err := a.account.SignInInteractive(ctx)
	if err != nil {
		return err
	}
	printlnFn("Signed in as", displayName(u))
	return nil
}

func (a *App) adminLogin(ctx context.Context, _ []string) error {
	email, err := GetSimpleText(a.reader, "Admin email", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(pw)

	u, err := a.account.SignInWithCredential(ctx, email, string(pw))
	if err != nil {
		return err
	}
	printlnFn("Signed in as", displayName(u))
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.account.SignOut(ctx); err != nil {
		return err
	}
	a.listed, a.catalog, a.dashboard = nil, nil, nil
	printlnFn("Signed out")
	return nil
}

// userDashboard shows the account summary.
func (a *App) userDashboard(ctx context.Context, _ []string) error {
	u := a.user()
	printTable(a.out, []string{"FIELD", "VALUE"}, [][]string{
		{"Name", u.Name},
		{"Email", u.Email},
		{"Semester", u.Semester},
		{"Branch", u.Branch},
		{"Wallet", fmt.Sprintf("₹%d", u.Wallet)},
		{"Uploads", fmt.Sprint(statOf(u, true))},
		{"Downloads", fmt.Sprint(statOf(u, false))},
	})
	return nil
}

func statOf(u *models.User, uploads bool) int {
	if u.Stats == nil {
		return 0
	}
	if uploads {
		return u.Stats.Uploads
	}
	return u.Stats.Downloads
}

// profile edits the profile. Empty answers keep the current value.
func (a *App) profile(ctx context.Context, _ []string) error {
	u := a.user()
	fields := session.ProfileFields{Name: u.Name, Semester: u.Semester, Branch: u.Branch}

	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Name", &fields.Name},
		{"Semester (1-8)", &fields.Semester},
		{"Branch", &fields.Branch},
	} {
		v, err := GetSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.label, *f.dst), a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = v
		}
	}

	avatar, err := a.optionalFile("Avatar image path (empty to keep)")
	if err != nil {
		return err
	}

	updated, err := a.account.UpdateProfile(ctx, fields, avatar)
	if err != nil {
		return err
	}
	printlnFn("Profile updated for", displayName(updated))
	return nil
}

func (a *App) optionalFile(prompt string) (*storage.File, error) {
	p, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil || p == "" {
		return nil, err
	}
	return storage.OpenFile(p)
}

func (a *App) requiredFile(prompt string) (*storage.File, error) {
	p, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}
	if p == "" {
		return nil, fmt.Errorf("a file is required")
	}
	return storage.OpenFile(p)
}

func displayName(u *models.User) string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}
