package session

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/identity"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/storage"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu sync.Mutex

	subscriber    func(identity.Event)
	Unsubscribed  bool
	SubscribeCall int

	Current      *models.Identity
	Token        string
	TokenErr     error
	Interactive  *models.Identity
	InteractErr  error
	Custom       *models.Identity
	CustomErr    error
	SignOutErr   error
	PhotoErr     error
	SignOutCalls int

	LastCustomToken string
	LastPhotoURL    string
}

func (f *fakeProvider) Subscribe(fn func(identity.Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubscribeCall++
	f.subscriber = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.Unsubscribed = true
		f.subscriber = nil
	}
}

func (f *fakeProvider) emit(e identity.Event) {
	f.mu.Lock()
	fn := f.subscriber
	f.mu.Unlock()
	if fn != nil {
		fn(e)
	}
}

func (f *fakeProvider) SignInInteractive(context.Context) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InteractErr != nil {
		return nil, f.InteractErr
	}
	f.Current = f.Interactive
	return f.Interactive, nil
}

func (f *fakeProvider) SignInWithCustomToken(_ context.Context, token string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastCustomToken = token
	if f.CustomErr != nil {
		return nil, f.CustomErr
	}
	f.Current = f.Custom
	return f.Custom, nil
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignOutCalls++
	f.Current = nil
	return f.SignOutErr
}

func (f *fakeProvider) CurrentUser() *models.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Current
}

func (f *fakeProvider) IDToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Token, f.TokenErr
}

func (f *fakeProvider) UpdatePhotoURL(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPhotoURL = url
	return f.PhotoErr
}

type fakeAPI struct {
	mu sync.Mutex

	User      *models.User
	VerifyErr error
	// verifyGate, when set, blocks Verify until it is closed.
	verifyGate chan struct{}
	verifying  chan struct{}

	CustomToken string
	LoginErr    error
	Patch       *models.UserPatch
	ProfileErr  error
	onProfile   func()

	VerifyCalls  int
	ProfileCalls int
	LastToken    string
	LastEmail    string
	LastPassword string
	LastProfile  client.ProfileRequest
}

func (f *fakeAPI) Verify(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	f.VerifyCalls++
	f.LastToken = token
	gate, verifying := f.verifyGate, f.verifying
	f.verifyGate = nil
	user, err := f.User.Clone(), f.VerifyErr
	f.mu.Unlock()

	if gate != nil {
		close(verifying)
		<-gate
	}
	return user, err
}

func (f *fakeAPI) AdminLogin(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastEmail, f.LastPassword = email, password
	return f.CustomToken, f.LoginErr
}

func (f *fakeAPI) UpdateProfile(_ context.Context, token string, req client.ProfileRequest) (*models.UserPatch, error) {
	f.mu.Lock()
	f.ProfileCalls++
	f.LastToken = token
	f.LastProfile = req
	hook := f.onProfile
	patch, err := f.Patch, f.ProfileErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return patch, err
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

type fakeArtifacts struct {
	mu         sync.Mutex
	Clears     int
	LastErrMsg string
}

func (f *fakeArtifacts) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Clears++
	return nil
}

func (f *fakeArtifacts) RecordError(_ context.Context, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastErrMsg = msg
	return nil
}

var alice = models.Identity{UID: "u1", Email: "a@x.com", DisplayName: "Alice G", PhotoURL: "https://g/alice.png"}

type harness struct {
	provider  *fakeProvider
	api       *fakeAPI
	uploader  *fakeUploader
	artifacts *fakeArtifacts
	store     *Store
	actions   *Actions
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		provider:  &fakeProvider{Token: "id-token"},
		api:       &fakeAPI{User: &models.User{ID: "u1", Name: "Alice", Wallet: 100}},
		uploader:  &fakeUploader{},
		artifacts: &fakeArtifacts{},
	}
	h.store = NewStore(h.provider, NewVerifier(h.api, "op.png"), WithArtifacts(h.artifacts, false))
	h.actions = NewActions(h.store, h.provider, h.api, h.uploader, "op.png", nil)
	h.store.Start(context.Background())
	t.Cleanup(func() { h.store.Stop(context.Background()) })
	return h
}

// signedIn drives the store through a successful signed-in event.
func (h *harness) signedIn(t *testing.T) {
	t.Helper()
	ident := alice
	h.provider.Current = &ident
	h.provider.emit(identity.Event{Seq: 1, Identity: &ident})
	require.NotNil(t, h.store.Snapshot().User)
}
