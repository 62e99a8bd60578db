package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/storage"
	"github.com/dmitrijs2005/notehub/internal/client/validation"
	"github.com/dmitrijs2005/notehub/internal/filex"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

const notesFolder = "notes"

// ApprovedOnly drops every note that is not approved.
func ApprovedOnly(notes []models.Note) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.Status == models.NoteStatusApproved {
			out = append(out, n)
		}
	}
	return out
}

// FilterByUploader keeps the notes uploaded by email. Notes without an
// uploader never match.
func FilterByUploader(notes []models.Note, email string) []models.Note {
	out := make([]models.Note, 0)
	if email == "" {
		return out
	}
	for _, n := range notes {
		if n.UploadedBy != nil && n.UploadedBy.Email == email {
			out = append(out, n)
		}
	}
	return out
}

// UniqueSubjects removes blanks and repeats, keeping first-seen order.
func UniqueSubjects(subjects []string) []string {
	seen := make(map[string]struct{}, len(subjects))
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// NoteService defines the note catalog operations.
//
// Contract:
//   - List: approved notes for the filter; works signed out.
//   - Subjects: distinct subjects of a semester and branch.
//   - SiteStats: the public counters; zeros when they cannot be fetched.
//   - MyNotes: every note, of any status, uploaded by email.
//   - Download: save a note's file into dir and return the path written.
//   - DownloadURL: a direct link to a note's file.
//   - Upload: store the file in object storage, then create a pending note.
type NoteService interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.Note, error)
	Subjects(ctx context.Context, semester, branch string) ([]string, error)
	SiteStats(ctx context.Context) models.SiteStats
	MyNotes(ctx context.Context, email string) ([]models.Note, error)
	Download(ctx context.Context, note models.Note, dir string) (string, error)
	DownloadURL(ctx context.Context, noteID string) (string, error)
	Upload(ctx context.Context, form models.NewNote, f *storage.File) (*models.Note, error)
}

type noteService struct {
	api       client.NotesAPI
	tokens    TokenSource
	uploader  storage.Uploader
	validator *validation.Validator
	log       logging.Logger
}

func NewNoteService(api client.NotesAPI, tokens TokenSource, uploader storage.Uploader, log logging.Logger) NoteService {
	return &noteService{
		api:       api,
		tokens:    tokens,
		uploader:  uploader,
		validator: validation.New(),
		log:       log.With("service", "notes"),
	}
}

func (s *noteService) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, error) {
	notes, err := s.api.ListNotes(ctx, "", filter)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return ApprovedOnly(notes), nil
}

func (s *noteService) Subjects(ctx context.Context, semester, branch string) ([]string, error) {
	subjects, err := s.api.Subjects(ctx, semester, branch)
	if err != nil {
		return nil, fmt.Errorf("error fetching subjects: %w", err)
	}
	return UniqueSubjects(subjects), nil
}

func (s *noteService) SiteStats(ctx context.Context) models.SiteStats {
	st, err := s.api.SiteStats(ctx)
	if err != nil {
		s.log.Warn(ctx, "error fetching site stats", "error", err)
		return models.SiteStats{}
	}
	return st
}

func (s *noteService) MyNotes(ctx context.Context, email string) ([]models.Note, error) {
	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return nil, err
	}
	notes, err := s.api.ListNotes(ctx, tok, models.NoteFilter{})
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return FilterByUploader(notes, email), nil
}

func (s *noteService) Download(ctx context.Context, note models.Note, dir string) (string, error) {
	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return "", err
	}
	body, err := s.api.DownloadNote(ctx, tok, note.ID)
	if err != nil {
		return "", fmt.Errorf("error downloading note %s: %w", note.ID, err)
	}
	defer body.Close()

	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return "", err
	}
	dst := filex.FreePath(abs, downloadName(note))

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("error creating %s: %w", dst, err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("error saving note %s: %w", note.ID, err)
	}

	s.log.Info(ctx, "note downloaded", "note", note.ID, "path", dst, "bytes", n)
	return dst, nil
}

// downloadName is the note title plus the extension of its stored file,
// PDF when unknown.
func downloadName(n models.Note) string {
	ext := ".pdf"
	if u, err := url.Parse(n.FileURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	title := n.Title
	if title == "" {
		title = n.ID
	}
	return title + ext
}

func (s *noteService) DownloadURL(ctx context.Context, noteID string) (string, error) {
	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return "", err
	}
	u, err := s.api.NoteDownloadURL(ctx, tok, noteID)
	if err != nil {
		return "", fmt.Errorf("error getting download link for %s: %w", noteID, err)
	}
	return u, nil
}

func (s *noteService) Upload(ctx context.Context, form models.NewNote, f *storage.File) (*models.Note, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, err
	}
	if err := storage.Validate(f); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrNoObjectStorage
	}

	tok, err := bearer(ctx, s.tokens)
	if err != nil {
		return nil, err
	}
	res, err := s.uploader.Upload(ctx, f, notesFolder)
	if err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	form.FileURL, form.CloudinaryID = res.URL, res.PublicID
	note, err := s.api.CreateNote(ctx, tok, form)
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}
	s.log.Info(ctx, "note uploaded", "note", note.ID, "url", res.URL)
	return note, nil
}
