package services

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/storage"
)

type fakeTokens struct {
	Token string
	Err   error
	Calls int
	mu    sync.Mutex
}

func (f *fakeTokens) IDToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	return f.Token, f.Err
}

// fakeBackend implements the admin, notes and papers APIs.
type fakeBackend struct {
	mu sync.Mutex

	Stats       models.Stats
	Notes       []models.Note
	Users       []models.AdminUser
	Papers      []models.QuestionPaper
	Wallet      int
	SubjectList []string
	File        string
	URL         string
	Created     *models.Note
	Site        models.SiteStats

	StatsErr    error
	NotesErr    error
	UsersErr    error
	ModerateErr error
	WalletErr   error
	ListErr     error
	PurchaseErr error
	UploadErr   error
	CreateErr   error
	SiteErr     error

	RestoredWallet  int
	PurchasedWallet int
	StatsCalls      int
	Calls           []string
	Tokens          []string
	LastFilter      models.NoteFilter
	LastPaperFilter models.PaperFilter
	LastNewNote     models.NewNote
	LastNewPaper    models.NewPaper
	LastUploadName  string
	LastUploadType   string
	LastUploadLength int
}

func (f *fakeBackend) record(call, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
	f.Tokens = append(f.Tokens, token)
}

func (f *fakeBackend) AdminStats(_ context.Context, token string) (models.Stats, error) {
	f.record("stats", token)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StatsCalls++
	return f.Stats, f.StatsErr
}

func (f *fakeBackend) AdminNotes(_ context.Context, token string) ([]models.Note, error) {
	f.record("notes", token)
	return append([]models.Note(nil), f.Notes...), f.NotesErr
}

func (f *fakeBackend) AdminUsers(_ context.Context, token string) ([]models.AdminUser, error) {
	f.record("users", token)
	return append([]models.AdminUser(nil), f.Users...), f.UsersErr
}

func (f *fakeBackend) ApproveNote(_ context.Context, token, id string) error {
	f.record("approve "+id, token)
	return f.ModerateErr
}

func (f *fakeBackend) RejectNote(_ context.Context, token, id string) error {
	f.record("reject "+id, token)
	return f.ModerateErr
}

func (f *fakeBackend) DeleteNote(_ context.Context, token, id string) error {
	f.record("delete-note "+id, token)
	return f.ModerateErr
}

func (f *fakeBackend) DeleteUser(_ context.Context, token, id string) error {
	f.record("delete-user "+id, token)
	return f.ModerateErr
}

func (f *fakeBackend) RestoreWallet(_ context.Context, token, id string) (int, error) {
	f.record("restore "+id, token)
	return f.RestoredWallet, f.WalletErr
}

func (f *fakeBackend) ListPapers(_ context.Context, token string, filter models.PaperFilter) ([]models.QuestionPaper, int, error) {
	f.record("papers", token)
	f.LastPaperFilter = filter
	return append([]models.QuestionPaper(nil), f.Papers...), f.Wallet, f.ListErr
}

func (f *fakeBackend) MyPapers(_ context.Context, token string) ([]models.QuestionPaper, int, error) {
	f.record("my-papers", token)
	return append([]models.QuestionPaper(nil), f.Papers...), f.Wallet, f.ListErr
}

func (f *fakeBackend) PurchasePaper(_ context.Context, token, id string) (int, error) {
	f.record("purchase "+id, token)
	return f.PurchasedWallet, f.PurchaseErr
}

func (f *fakeBackend) PaperDownloadURL(_ context.Context, token, id string) (string, error) {
	f.record("paper-url "+id, token)
	return f.URL, f.ListErr
}

func (f *fakeBackend) UploadPaper(_ context.Context, token string, p models.NewPaper, name, contentType string, data []byte) error {
	f.record("upload-paper", token)
	f.LastNewPaper, f.LastUploadName, f.LastUploadType, f.LastUploadLength = p, name, contentType, len(data)
	return f.UploadErr
}

func (f *fakeBackend) ListNotes(_ context.Context, token string, filter models.NoteFilter) ([]models.Note, error) {
	f.record("list-notes", token)
	f.LastFilter = filter
	return append([]models.Note(nil), f.Notes...), f.ListErr
}

func (f *fakeBackend) Subjects(context.Context, string, string) ([]string, error) {
	f.record("subjects", "")
	return f.SubjectList, f.ListErr
}

func (f *fakeBackend) SiteStats(context.Context) (models.SiteStats, error) {
	f.record("site-stats", "")
	return f.Site, f.SiteErr
}

func (f *fakeBackend) DownloadNote(_ context.Context, token, id string) (io.ReadCloser, error) {
	f.record("download "+id, token)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return io.NopCloser(strings.NewReader(f.File)), nil
}

func (f *fakeBackend) NoteDownloadURL(_ context.Context, token, id string) (string, error) {
	f.record("note-url "+id, token)
	return f.URL, f.ListErr
}

func (f *fakeBackend) CreateNote(_ context.Context, token string, n models.NewNote) (*models.Note, error) {
	f.record("create-note", token)
	f.LastNewNote = n
	return f.Created, f.CreateErr
}

type fakeUploader struct {
	Result     *storage.Result
	Err        error
	Calls      int
	LastFolder string
}

func (f *fakeUploader) Upload(_ context.Context, _ *storage.File, folder string) (*storage.Result, error) {
	f.Calls++
	f.LastFolder = folder
	return f.Result, f.Err
}
