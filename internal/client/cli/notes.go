package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/services"
)

// listNotes shows approved notes. With a semester and branch but no
// subject it lists the subjects first.
func (a *App) listNotes(ctx context.Context, args []string) error {
	var f models.NoteFilter
	if len(args) > 0 {
		f.Semester = args[0]
	}
	if len(args) > 1 {
		f.Branch = args[1]
	}
	if len(args) > 2 {
		f.Subject = args[2]
	}

	if f.Semester != "" && f.Branch != "" && f.Subject == "" {
		subjects, err := a.notes.Subjects(ctx, f.Semester, f.Branch)
		if err != nil {
			return err
		}
		if len(subjects) > 0 {
			printlnFn("Subjects:", joinComma(subjects))
		}
	}

	notes, err := a.notes.List(ctx, f)
	if err != nil {
		return err
	}
	a.listed = notes
	printNotes(a.out, notes, false)
	return nil
}

func (a *App) myNotes(ctx context.Context, _ []string) error {
	notes, err := a.notes.MyNotes(ctx, a.user().Email)
	if err != nil {
		return err
	}
	a.listed = notes
	printNotes(a.out, notes, true)
	return nil
}

func (a *App) uploadNote(ctx context.Context, _ []string) error {
	var form models.NewNote
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Title", &form.Title},
		{"Semester (1-8)", &form.Semester},
		{"Branch", &form.Branch},
		{"Subject", &form.Subject},
	} {
		v, err := GetSimpleText(a.reader, f.label, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	desc, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	form.Description = desc

	file, err := a.requiredFile("File path")
	if err != nil {
		return err
	}
	note, err := a.notes.Upload(ctx, form, file)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Uploaded %q, it is waiting for review", note.Title))
	return nil
}

// listedNote finds id in the last listing shown.
func (a *App) listedNote(id string) (models.Note, error) {
	i := slices.IndexFunc(a.listed, func(n models.Note) bool { return n.ID == id })
	if i < 0 {
		return models.Note{}, fmt.Errorf("%w: run 'notes' or 'my-notes' first", services.ErrNoteNotFound)
	}
	return a.listed[i], nil
}

func (a *App) downloadNote(ctx context.Context, args []string) error {
	id, err := argument(args, "note id")
	if err != nil {
		return err
	}
	note, err := a.listedNote(id)
	if err != nil {
		return err
	}
	p, err := a.notes.Download(ctx, note, a.config.DownloadDir)
	if err != nil {
		return err
	}
	printlnFn("Saved to", p)
	return nil
}

func (a *App) noteLink(ctx context.Context, args []string) error {
	id, err := argument(args, "note id")
	if err != nil {
		return err
	}
	u, err := a.notes.DownloadURL(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(u)
	return nil
}
