package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/identity"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/storage"
	"github.com/dmitrijs2005/notehub/internal/client/validation"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

const avatarFolder = "profile_pictures"

// CredentialPhase is a step of the admin credential sign-in.
type CredentialPhase string

const (
	PhaseRequestExchange    CredentialPhase = "request_exchange"
	PhaseRedeem             CredentialPhase = "redeem"
	PhaseVerify             CredentialPhase = "verify"
	PhaseDone               CredentialPhase = "done"
	PhaseInvalidCredentials CredentialPhase = "invalid_credentials"
	PhaseExchangeFailed     CredentialPhase = "exchange_failed"
	PhaseVerifyFailed       CredentialPhase = "verify_failed"
)

// Failed reports whether the phase is terminal and unsuccessful.
func (p CredentialPhase) Failed() bool {
	switch p {
	case PhaseInvalidCredentials, PhaseExchangeFailed, PhaseVerifyFailed:
		return true
	}
	return false
}

// CredentialAttempt records where the last credential sign-in ended.
type CredentialAttempt struct {
	Email string
	Phase CredentialPhase
	Err   error
}

// ProfileFields are the user-editable profile fields.
type ProfileFields struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Semester string `json:"semester" validate:"omitempty,semester"`
	Branch   string `json:"branch" validate:"max=100"`
}

// Actions are the operations that change who is signed in.
type Actions struct {
	store     *Store
	provider  identity.Provider
	api       client.AuthAPI
	uploader  storage.Uploader
	validator *validation.Validator
	avatar    string
	log       logging.Logger

	mu   sync.Mutex
	last CredentialAttempt
}

func NewActions(store *Store, provider identity.Provider, api client.AuthAPI, uploader storage.Uploader, operatorAvatar string, log logging.Logger) *Actions {
	if log == nil {
		log = logging.Nop()
	}
	return &Actions{
		store:     store,
		provider:  provider,
		api:       api,
		uploader:  uploader,
		validator: validation.New(),
		avatar:    operatorAvatar,
		log:       log.With("component", "session-actions"),
	}
}

// SignInInteractive runs the browser sign-in. A cancelled sign-in leaves
// the store untouched and returns ErrSignInCancelled.
func (a *Actions) SignInInteractive(ctx context.Context) (*models.User, error) {
	ident, err := a.provider.SignInInteractive(ctx)
	if errors.Is(err, identity.ErrCancelled) {
		a.log.Info(ctx, "interactive sign-in cancelled")
		return nil, &Error{Kind: ErrSignInCancelled, Message: "Sign-in cancelled", Err: err}
	}
	if err != nil {
		return nil, fail(ErrAuth, "Failed to sign in", err)
	}
	return a.finishSignIn(ctx, *ident)
}

// SignInWithCredential exchanges admin credentials for a custom token, redeems
// it with the provider and verifies the resulting identity.
func (a *Actions) SignInWithCredential(ctx context.Context, email, password string) (*models.User, error) {
	att := CredentialAttempt{Email: email, Phase: PhaseRequestExchange}
	defer func() { a.record(ctx, att) }()

	var (
		customToken string
		ident       *models.Identity
		user        *models.User
		err         error
	)
	for !att.Phase.Failed() && att.Phase != PhaseDone {
		switch att.Phase {
		case PhaseRequestExchange:
			customToken, err = a.api.AdminLogin(ctx, email, password)
			if err != nil {
				att.Phase, att.Err = PhaseInvalidCredentials, fail(ErrInvalidCredentials, "Invalid credentials", err)
				break
			}
			att.Phase = PhaseRedeem
		case PhaseRedeem:
			ident, err = a.provider.SignInWithCustomToken(ctx, customToken)
			if err != nil {
				att.Phase, att.Err = PhaseExchangeFailed, fail(ErrExchangeFailed, "Failed to sign in with exchange token", err)
				break
			}
			att.Phase = PhaseVerify
		case PhaseVerify:
			user, err = a.finishSignIn(ctx, *ident)
			if err != nil {
				att.Phase, att.Err = PhaseVerifyFailed, err
				break
			}
			att.Phase = PhaseDone
		}
	}
	if att.Err != nil {
		return nil, att.Err
	}
	return user, nil
}

func (a *Actions) record(ctx context.Context, att CredentialAttempt) {
	a.mu.Lock()
	a.last = att
	a.mu.Unlock()
	if att.Err != nil {
		a.log.Warn(ctx, "credential sign-in failed", "email", att.Email, "phase", att.Phase, "error", att.Err)
		return
	}
	a.log.Info(ctx, "credential sign-in complete", "email", att.Email)
}

// LastAttempt returns the outcome of the most recent credential sign-in.
func (a *Actions) LastAttempt() CredentialAttempt {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

func (a *Actions) finishSignIn(ctx context.Context, ident models.Identity) (*models.User, error) {
	ticket := a.store.begin()
	user, err := a.store.verify(ctx, ident)
	if err != nil {
		a.store.recordError(ctx, err)
		a.store.apply(ticket, nil, err, false)
		return nil, err
	}
	a.store.apply(ticket, user, nil, false)
	return user.Clone(), nil
}

// SignOut signs out of the provider and drops the user. Signing out when
// nobody is signed in does nothing.
func (a *Actions) SignOut(ctx context.Context) error {
	if !a.store.Snapshot().SignedIn() && a.provider.CurrentUser() == nil {
		return nil
	}
	ticket := a.store.begin()
	a.store.clearArtifacts(ctx)
	err := a.provider.SignOut(ctx)
	a.store.apply(ticket, nil, nil, false)
	if err != nil {
		return fail(ErrAuth, "Failed to sign out", err)
	}
	return nil
}

// UpdateProfile saves the profile fields and, when avatar is set, uploads it
// as the new profile picture first. A failed upload sends nothing to the
// backend. Without an upload the provider's current photo wins over the
// backend's.
func (a *Actions) UpdateProfile(ctx context.Context, fields ProfileFields, avatar *storage.File) (*models.User, error) {
	prev := a.store.Snapshot().User
	if prev == nil {
		return nil, noUser()
	}
	if err := a.validator.Struct(fields); err != nil {
		return nil, fail(ErrProfileUpdate, "Invalid profile", err)
	}

	req := client.ProfileRequest{Name: fields.Name, Semester: fields.Semester, Branch: fields.Branch}
	var live string
	if avatar != nil {
		url, err := a.uploadAvatar(ctx, prev.ID, avatar)
		if err != nil {
			return nil, err
		}
		live = url
		if url != prev.AvatarURL {
			req.PhotoURL = &url
		}
	} else if cur := a.provider.CurrentUser(); cur != nil {
		live = cur.PhotoURL
	}

	token, err := a.store.IDToken(ctx)
	if err != nil {
		return nil, fail(ErrProfileUpdate, "Failed to get authentication token", err)
	}
	patch, err := a.api.UpdateProfile(ctx, token, req)
	if err != nil {
		return nil, fail(ErrProfileUpdate, "Failed to update profile", err)
	}

	user, ok := a.store.replaceUser(prev.ID, func(cur *models.User) *models.User {
		return MergeProfileUpdate(cur, patch, live, a.avatar)
	})
	if !ok {
		return nil, noUser()
	}
	a.log.Info(ctx, "profile updated", "uid", user.ID)
	return user, nil
}

// AdoptWallet replaces the signed-in user's wallet with a balance the
// server reported, so every view shows the same amount.
func (a *Actions) AdoptWallet(wallet int) (*models.User, error) {
	prev := a.store.Snapshot().User
	if prev == nil {
		return nil, ErrNotSignedIn
	}
	user, ok := a.store.replaceUser(prev.ID, func(cur *models.User) *models.User {
		cur.Wallet = wallet
		return cur
	})
	if !ok {
		return nil, ErrNotSignedIn
	}
	return user, nil
}

func (a *Actions) uploadAvatar(ctx context.Context, uid string, f *storage.File) (string, error) {
	if err := storage.Validate(f); err != nil {
		return "", fail(ErrProfileUpdate, "Invalid profile picture", err)
	}
	if !f.IsImage() {
		return "", fail(ErrProfileUpdate, "Invalid profile picture",
			fmt.Errorf("%w: profile picture must be an image", storage.ErrUnsupportedType))
	}
	if a.uploader == nil {
		return "", fail(ErrProfileUpdate, "Failed to upload profile picture", errors.New("no object storage configured"))
	}
	res, err := a.uploader.Upload(ctx, f, avatarFolder+"/"+uid)
	if err != nil {
		return "", fail(ErrProfileUpdate, "Failed to upload profile picture", err)
	}
	if err := a.provider.UpdatePhotoURL(ctx, res.URL); err != nil {
		return "", fail(ErrProfileUpdate, "Failed to update profile picture", err)
	}
	return res.URL, nil
}

func noUser() *Error {
	return &Error{Kind: ErrProfileUpdate, Message: "No user logged in"}
}
