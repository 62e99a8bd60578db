package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/notehub/internal/client/models"
)

// ProfileRequest is the body of a profile update. PhotoURL is sent only when
// it changed.
type ProfileRequest struct {
	Name     string  `json:"name,omitempty"`
	Semester string  `json:"semester,omitempty"`
	Branch   string  `json:"branch,omitempty"`
	PhotoURL *string `json:"photoURL,omitempty"`
}

// AuthAPI covers identity verification and profile calls.
type AuthAPI interface {
	Verify(ctx context.Context, token string) (*models.User, error)
	AdminLogin(ctx context.Context, email, password string) (string, error)
	UpdateProfile(ctx context.Context, token string, req ProfileRequest) (*models.UserPatch, error)
}

// NotesAPI covers the note catalog. An empty token sends an anonymous request.
type NotesAPI interface {
	ListNotes(ctx context.Context, token string, filter models.NoteFilter) ([]models.Note, error)
	Subjects(ctx context.Context, semester, branch string) ([]string, error)
	SiteStats(ctx context.Context) (models.SiteStats, error)
	DownloadNote(ctx context.Context, token, id string) (io.ReadCloser, error)
	NoteDownloadURL(ctx context.Context, token, id string) (string, error)
	CreateNote(ctx context.Context, token string, note models.NewNote) (*models.Note, error)
}

// AdminAPI covers moderation and user management.
type AdminAPI interface {
	AdminStats(ctx context.Context, token string) (models.Stats, error)
	AdminNotes(ctx context.Context, token string) ([]models.Note, error)
	AdminUsers(ctx context.Context, token string) ([]models.AdminUser, error)
	ApproveNote(ctx context.Context, token, id string) error
	RejectNote(ctx context.Context, token, id string) error
	DeleteNote(ctx context.Context, token, id string) error
	DeleteUser(ctx context.Context, token, id string) error
	RestoreWallet(ctx context.Context, token, id string) (int, error)
}

// PapersAPI covers the question paper catalog and wallet purchases.
type PapersAPI interface {
	ListPapers(ctx context.Context, token string, filter models.PaperFilter) ([]models.QuestionPaper, int, error)
	MyPapers(ctx context.Context, token string) ([]models.QuestionPaper, int, error)
	PurchasePaper(ctx context.Context, token, id string) (int, error)
	PaperDownloadURL(ctx context.Context, token, id string) (string, error)
	UploadPaper(ctx context.Context, token string, paper models.NewPaper, fileName, contentType string, data []byte) error
}

// Client is the full backend contract.
type Client interface {
	AuthAPI
	NotesAPI
	AdminAPI
	PapersAPI
}
