package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/config"
	"github.com/dmitrijs2005/notehub/internal/client/guard"
	"github.com/dmitrijs2005/notehub/internal/client/identity"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notehub/internal/client/services"
	"github.com/dmitrijs2005/notehub/internal/client/session"
	"github.com/dmitrijs2005/notehub/internal/client/storage"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

// sessionView is the read side of the session store.
type sessionView interface {
	Snapshot() session.State
}

// accountActions are the session actions the CLI exposes.
type accountActions interface {
	SignInInteractive(ctx context.Context) (*models.User, error)
	SignInWithCredential(ctx context.Context, email, password string) (*models.User, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, fields session.ProfileFields, avatar *storage.File) (*models.User, error)
	AdoptWallet(wallet int) (*models.User, error)
}

type App struct {
	config  *config.Config
	log     logging.Logger
	session sessionView
	account accountActions
	notes   services.NoteService
	papers  services.PaperService
	admin   services.AdminService
	reader  *bufio.Reader
	out     io.Writer

	start func(ctx context.Context) error
	stop  func(ctx context.Context)

	// snapshots owned by the views that fetched them
	listed    []models.Note
	catalog   *services.Catalog
	dashboard *services.Dashboard
}

// NewApp wires the session database, backend client, identity provider,
// object storage and services from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, err := logging.New(c.LogFormat, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, client.WithLogger(log))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	uploader, err := storage.New(ctx, c.Storage, log)
	if err != nil {
		log.Warn(ctx, "object storage disabled", "error", err)
		uploader = nil
	}

	a := &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	sessions := metadata.NewSessionStore(db)
	provider := identity.NewFirebaseProvider(identity.Config{
		APIKey:            c.Provider.APIKey,
		OAuthClientID:     c.Provider.OAuthClientID,
		OAuthClientSecret: c.Provider.OAuthClientSecret,
		IdentityBaseURL:   c.Provider.IdentityBaseURL,
		SecureTokenURL:    c.Provider.SecureTokenURL,
		CallbackAddr:      c.Provider.CallbackAddr,
		Opener:            a.openURL,
		HTTPClient:        &http.Client{Timeout: c.RequestTimeout},
		Persister:         sessions,
	}, log)

	store := session.NewStore(provider,
		session.NewVerifier(api, c.OperatorAvatarURL),
		session.WithArtifacts(sessions, !c.PersistSession),
		session.WithLogger(log),
	)

	a.session = store
	a.account = session.NewActions(store, provider, api, uploader, c.OperatorAvatarURL, log)
	a.notes = services.NewNoteService(api, store, uploader, log)
	a.papers = services.NewPaperService(api, store, log)
	a.admin = services.NewAdminService(api, store, log)

	a.start = func(ctx context.Context) error {
		store.Start(ctx)
		provider.Start(ctx)
		return store.WaitReady(ctx)
	}
	a.stop = func(ctx context.Context) {
		store.Stop(ctx)
		if err := db.Close(); err != nil {
			log.Warn(ctx, "error closing database", "error", err)
		}
	}
	return a, nil
}

// Run checks the saved session, then serves the prompt until the user
// exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	if a.stop != nil {
		defer a.stop(context.Background())
	}

	printlnFn("Welcome to notehub CLI (type 'help' for commands)")
	if a.start != nil {
		printlnFn("Checking your session...")
		if err := a.start(ctx); err != nil {
			a.log.Error(ctx, "session check interrupted", "error", err)
			return
		}
	}
	if st := a.session.Snapshot(); st.User != nil {
		printlnFn(fmt.Sprintf("Signed in as %s", displayName(st.User)))
	}

	runREPL(ctx, a.shell(), a.status, a.reader)
}

func (a *App) openURL(u string) error {
	_, err := fmt.Fprintf(a.out, "Open this link in your browser to sign in:\n  %s\n", u)
	return err
}

func (a *App) status() string {
	st := a.session.Snapshot()
	switch {
	case st.Loading:
		return "(loading)"
	case st.User == nil:
		return ""
	case st.User.IsAdmin:
		return fmt.Sprintf("(%s admin)", displayName(st.User))
	default:
		return fmt.Sprintf("(%s ₹%d)", displayName(st.User), st.User.Wallet)
	}
}

func (a *App) user() *models.User {
	return a.session.Snapshot().User
}

// shell registers every view with the requirement the route guard checks.
func (a *App) shell() *shell {
	s := newShell(a.session.Snapshot)

	s.handle("home", guard.None, "home", a.home)
	s.handle("about", guard.None, "about", a.about)
	s.handle("notes", guard.None, "notes [semester branch [subject]]", a.listNotes)
	s.handle("papers", guard.None, "papers [semester [branch]]", a.listPapers)
	s.handle("signin", guard.None, "signin", a.signIn)
	s.handle("admin-login", guard.None, "admin-login", a.adminLogin)
	s.handle("logout", guard.None, "logout", a.logout)

	s.handle("dashboard", guard.Auth, "dashboard", a.userDashboard)
	s.handle("profile", guard.Auth, "profile", a.profile)
	s.handle("my-notes", guard.Auth, "my-notes", a.myNotes)
	s.handle("upload-note", guard.Auth, "upload-note", a.uploadNote)
	s.handle("download", guard.Auth, "download <note-id>", a.downloadNote)
	s.handle("note-link", guard.Auth, "note-link <note-id>", a.noteLink)
	s.handle("my-papers", guard.Auth, "my-papers", a.myPapers)
	s.handle("purchase", guard.Auth, "purchase <paper-id>", a.purchase)
	s.handle("paper-link", guard.Auth, "paper-link <paper-id>", a.paperLink)

	s.handle("admin", guard.Admin, "admin [all|pending|approved|rejected] [search...]", a.adminDashboard)
	s.handle("users", guard.Admin, "users [search...]", a.adminUsers)
	s.handle("approve", guard.Admin, "approve <note-id>", a.approve)
	s.handle("reject", guard.Admin, "reject <note-id>", a.reject)
	s.handle("delete-note", guard.Admin, "delete-note <note-id>", a.deleteNote)
	s.handle("delete-user", guard.Admin, "delete-user <user-id>", a.deleteUser)
	s.handle("restore-wallet", guard.Admin, "restore-wallet <user-id>", a.restoreWallet)
	s.handle("upload-paper", guard.Admin, "upload-paper", a.uploadPaper)
	return s
}
