package identity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	DefaultIdentityBaseURL = "https://identitytoolkit.googleapis.com"
	DefaultSecureTokenURL  = "https://securetoken.googleapis.com/v1/token"
	DefaultCallbackAddr    = "127.0.0.1:0"
)

// SessionPersister keeps the refresh token between runs.
type SessionPersister interface {
	Save(ctx context.Context, s metadata.Session) error
	Load(ctx context.Context) (metadata.Session, bool, error)
	Clear(ctx context.Context) error
}

type Config struct {
	APIKey            string
	OAuthClientID     string
	OAuthClientSecret string
	IdentityBaseURL   string
	SecureTokenURL    string
	CallbackAddr      string

	// OAuthEndpoint defaults to Google's.
	OAuthEndpoint oauth2.Endpoint
	// Opener presents the authorization URL to the user.
	Opener func(authURL string) error

	HTTPClient *http.Client
	Persister  SessionPersister
}

// FirebaseProvider talks to the Firebase Auth REST API.
type FirebaseProvider struct {
	cfg  Config
	http *http.Client
	log  logging.Logger
	now  func() time.Time

	mu          sync.Mutex
	current     *models.Identity
	ts          oauth2.TokenSource
	lastRefresh string
	seq         uint64
	initialized bool
	subs        map[uint64]*subscriber
	nextSub     uint64
}

var _ Provider = (*FirebaseProvider)(nil)

func NewFirebaseProvider(cfg Config, log logging.Logger) *FirebaseProvider {
	if cfg.IdentityBaseURL == "" {
		cfg.IdentityBaseURL = DefaultIdentityBaseURL
	}
	if cfg.SecureTokenURL == "" {
		cfg.SecureTokenURL = DefaultSecureTokenURL
	}
	if cfg.CallbackAddr == "" {
		cfg.CallbackAddr = DefaultCallbackAddr
	}
	if cfg.OAuthEndpoint.TokenURL == "" {
		cfg.OAuthEndpoint = endpoints.Google
	}
	h := cfg.HTTPClient
	if h == nil {
		h = http.DefaultClient
	}
	if log == nil {
		log = logging.Nop()
	}
	return &FirebaseProvider{
		cfg:  cfg,
		http: h,
		log:  log.With("component", "identity"),
		now:  time.Now,
		subs: make(map[uint64]*subscriber),
	}
}

// Subscribe registers fn. If the provider already published its initial
// state, fn first receives the current state.
func (p *FirebaseProvider) Subscribe(fn func(Event)) func() {
	s := newSubscriber(fn)

	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = s
	if p.initialized {
		s.push(Event{Seq: p.seq, Identity: cloneIdentity(p.current)})
	}
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
		s.close()
	}
}

// Start publishes the initial state, restoring a persisted session when a
// refresh token is available. It only has an effect once.
func (p *FirebaseProvider) Start(ctx context.Context) {
	p.mu.Lock()
	if p.initialized {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	ident, ts, rt := p.restore(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return
	}
	p.initialized = true
	p.ts, p.lastRefresh = ts, rt
	p.publishLocked(ident)
}

func (p *FirebaseProvider) restore(ctx context.Context) (*models.Identity, oauth2.TokenSource, string) {
	if p.cfg.Persister == nil {
		return nil, nil, ""
	}
	sess, ok, err := p.cfg.Persister.Load(ctx)
	if err != nil {
		p.log.Warn(ctx, "load session failed", "error", err)
		return nil, nil, ""
	}
	if !ok {
		return nil, nil, ""
	}

	ts := p.tokenSource(&oauth2.Token{RefreshToken: sess.RefreshToken})
	tok, err := ts.Token()
	if err != nil {
		p.log.Info(ctx, "stored session rejected", "error", err)
		if cerr := p.cfg.Persister.Clear(ctx); cerr != nil {
			p.log.Warn(ctx, "clear session failed", "error", cerr)
		}
		return nil, nil, ""
	}
	ident, err := identityFromToken(idTokenOf(tok))
	if err != nil {
		p.log.Warn(ctx, "stored session unreadable", "error", err)
		return nil, nil, ""
	}
	p.log.Debug(ctx, "session restored", "uid", ident.UID)
	return ident, ts, tok.RefreshToken
}

// publishLocked records ident as current and fans the change out. p.mu
// must be held.
func (p *FirebaseProvider) publishLocked(ident *models.Identity) {
	p.current = ident
	p.seq++
	e := Event{Seq: p.seq, Identity: cloneIdentity(ident)}
	for _, s := range p.subs {
		s.push(e)
	}
}

func (p *FirebaseProvider) tokenSource(tok *oauth2.Token) oauth2.TokenSource {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  p.cfg.SecureTokenURL + "?key=" + url.QueryEscape(p.cfg.APIKey),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, p.http)
	return oauth2.ReuseTokenSource(tok, conf.TokenSource(ctx, tok))
}

// establish adopts a fresh account session and publishes it.
func (p *FirebaseProvider) establish(ctx context.Context, resp *accountResponse) (*models.Identity, error) {
	if resp.IDToken == "" || resp.RefreshToken == "" {
		return nil, fmt.Errorf("%w: response without tokens", ErrProvider)
	}
	ident, err := identityFromToken(resp.IDToken)
	if err != nil {
		return nil, err
	}
	if ident.DisplayName == "" {
		ident.DisplayName = resp.DisplayName
	}
	if ident.PhotoURL == "" {
		ident.PhotoURL = resp.PhotoURL
	}
	if ident.Email == "" {
		ident.Email = resp.Email
	}

	tok := (&oauth2.Token{
		AccessToken:  resp.IDToken,
		TokenType:    "Bearer",
		RefreshToken: resp.RefreshToken,
		Expiry:       resp.expiry(p.now()),
	}).WithExtra(map[string]any{"id_token": resp.IDToken})

	p.persist(ctx, resp.RefreshToken, ident)

	p.mu.Lock()
	p.ts = p.tokenSource(tok)
	p.lastRefresh = resp.RefreshToken
	p.initialized = true
	p.publishLocked(ident)
	p.mu.Unlock()

	return cloneIdentity(ident), nil
}

func (p *FirebaseProvider) persist(ctx context.Context, refreshToken string, ident *models.Identity) {
	if p.cfg.Persister == nil {
		return
	}
	err := p.cfg.Persister.Save(ctx, metadata.Session{RefreshToken: refreshToken, UID: ident.UID, Email: ident.Email})
	if err != nil {
		p.log.Warn(ctx, "persist session failed", "error", err)
	}
}

// SignInInteractive runs the OAuth2 authorization code flow with PKCE
// against a loopback redirect, then exchanges the Google ID token for a
// provider session. A user who declines consent gets ErrCancelled, as does
// a cancelled ctx.
func (p *FirebaseProvider) SignInInteractive(ctx context.Context) (*models.Identity, error) {
	if p.cfg.Opener == nil {
		return nil, fmt.Errorf("%w: no browser opener configured", ErrProvider)
	}

	ln, err := net.Listen("tcp", p.cfg.CallbackAddr)
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}
	redirectURL := "http://" + ln.Addr().String() + callbackPath

	conf := &oauth2.Config{
		ClientID:     p.cfg.OAuthClientID,
		ClientSecret: p.cfg.OAuthClientSecret,
		Endpoint:     p.cfg.OAuthEndpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
	}
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	srv := &http.Server{Handler: callbackRouter(state, results), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Warn(ctx, "callback server stopped", "error", err)
		}
	}()
	defer func() { _ = srv.Close() }()

	authURL := conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	if err := p.cfg.Opener(authURL); err != nil {
		return nil, fmt.Errorf("open authorization url: %w", err)
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	xctx := context.WithValue(ctx, oauth2.HTTPClient, p.http)
	tok, err := conf.Exchange(xctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %w", ErrProvider, err)
	}
	googleID, _ := tok.Extra("id_token").(string)
	if googleID == "" {
		return nil, fmt.Errorf("%w: google response without id_token", ErrProvider)
	}

	resp, err := p.accounts(ctx, "signInWithIdp", map[string]any{
		"postBody":          url.Values{"id_token": {googleID}, "providerId": {"google.com"}}.Encode(),
		"requestUri":        redirectURL,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return p.establish(ctx, resp)
}

// SignInWithCustomToken redeems a backend-issued custom token.
func (p *FirebaseProvider) SignInWithCustomToken(ctx context.Context, token string) (*models.Identity, error) {
	resp, err := p.accounts(ctx, "signInWithCustomToken", map[string]any{
		"token":             token,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return p.establish(ctx, resp)
}

// SignOut drops the session. Signing out while signed out publishes
// nothing.
func (p *FirebaseProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	wasSignedIn := p.current != nil || p.ts != nil
	p.current, p.ts, p.lastRefresh = nil, nil, ""
	if wasSignedIn {
		p.publishLocked(nil)
	}
	p.mu.Unlock()

	if p.cfg.Persister != nil && wasSignedIn {
		if err := p.cfg.Persister.Clear(ctx); err != nil {
			p.log.Warn(ctx, "clear session failed", "error", err)
		}
	}
	return nil
}

func (p *FirebaseProvider) CurrentUser() *models.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneIdentity(p.current)
}

// IDToken returns the current ID token, refreshing it when expired.
func (p *FirebaseProvider) IDToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	ts, ident, last := p.ts, cloneIdentity(p.current), p.lastRefresh
	p.mu.Unlock()
	if ts == nil || ident == nil {
		return "", ErrNoCurrentUser
	}

	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("%w: refresh: %w", ErrProvider, err)
	}
	if tok.RefreshToken != "" && tok.RefreshToken != last {
		p.mu.Lock()
		if p.ts == ts {
			p.lastRefresh = tok.RefreshToken
		}
		p.mu.Unlock()
		p.persist(ctx, tok.RefreshToken, ident)
	}
	return idTokenOf(tok), nil
}

// UpdatePhotoURL sets the account photo. The change is not published as a
// state event.
func (p *FirebaseProvider) UpdatePhotoURL(ctx context.Context, photoURL string) error {
	idToken, err := p.IDToken(ctx)
	if err != nil {
		return err
	}
	if _, err := p.accounts(ctx, "update", map[string]any{
		"idToken":           idToken,
		"photoUrl":          photoURL,
		"returnSecureToken": false,
	}); err != nil {
		return err
	}

	p.mu.Lock()
	if p.current != nil {
		p.current.PhotoURL = photoURL
	}
	p.mu.Unlock()
	return nil
}

func idTokenOf(tok *oauth2.Token) string {
	if id, ok := tok.Extra("id_token").(string); ok && id != "" {
		return id
	}
	return tok.AccessToken
}

func cloneIdentity(i *models.Identity) *models.Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
