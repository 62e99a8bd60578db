// Package session owns the signed-in user. The Store bridges the identity
// provider's event stream to an application user record, and Actions are the
// only way to change it.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/notehub/internal/client/identity"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

// State is a point-in-time view of the store.
type State struct {
	User    *models.User
	Loading bool
	Err     error
}

func (s State) SignedIn() bool { return s.User != nil }

// Artifacts are transient session leftovers kept on disk.
type Artifacts interface {
	Clear(ctx context.Context) error
	RecordError(ctx context.Context, msg string) error
}

type Store struct {
	provider    identity.Provider
	verifier    *Verifier
	artifacts   Artifacts
	clearOnStop bool
	log         logging.Logger

	mu          sync.Mutex
	user        *models.User
	loading     bool
	err         error
	lastSeq     uint64
	ticket      uint64
	started     bool
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	watchers    map[uint64]func(State)
	nextWatcher uint64

	ready     chan struct{}
	readyOnce sync.Once
}

type StoreOption func(*Store)

// WithArtifacts attaches the artifact store. With clearOnStop the artifacts
// are also wiped by Stop.
func WithArtifacts(a Artifacts, clearOnStop bool) StoreOption {
	return func(s *Store) {
		s.artifacts = a
		s.clearOnStop = clearOnStop
	}
}

func WithLogger(l logging.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

func NewStore(p identity.Provider, v *Verifier, opts ...StoreOption) *Store {
	s := &Store{
		provider: p,
		verifier: v,
		log:      logging.Nop(),
		loading:  true,
		ctx:      context.Background(),
		watchers: make(map[uint64]func(State)),
		ready:    make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "session")
	return s
}

// Start subscribes to the provider. Calls after the first are ignored.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	unsub := s.provider.Subscribe(s.handleEvent)

	s.mu.Lock()
	s.unsubscribe = unsub
	s.mu.Unlock()
}

// Stop unsubscribes, cancels in-flight verification and, if configured,
// clears the artifacts.
func (s *Store) Stop(ctx context.Context) {
	s.mu.Lock()
	unsub, cancel := s.unsubscribe, s.cancel
	s.unsubscribe, s.cancel = nil, nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
	if s.clearOnStop {
		s.clearArtifacts(ctx)
	}
}

// Snapshot returns the current state. The user is a copy.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	return State{User: s.user.Clone(), Loading: s.loading, Err: s.err}
}

// WaitReady blocks until the first provider event has been processed.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn for state changes. fn runs on the goroutine that
// made the change and must not call back into mutating methods.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// IDToken returns a fresh bearer token for the signed-in user.
func (s *Store) IDToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	signedIn := s.user != nil
	s.mu.Unlock()
	if !signedIn {
		return "", ErrNotSignedIn
	}
	return s.provider.IDToken(ctx)
}

func (s *Store) handleEvent(e identity.Event) {
	s.mu.Lock()
	if e.Seq != 0 && e.Seq <= s.lastSeq {
		s.mu.Unlock()
		return
	}
	s.lastSeq = e.Seq
	ticket := s.beginLocked()
	ctx := s.ctx
	s.mu.Unlock()

	if e.Identity == nil {
		s.apply(ticket, nil, nil, true)
		return
	}

	user, err := s.verify(ctx, *e.Identity)
	if err != nil {
		s.log.Warn(ctx, "session verification failed", "uid", e.Identity.UID, "error", err)
		s.recordError(ctx, err)
		s.apply(ticket, nil, err, true)
		return
	}
	s.log.Debug(ctx, "session verified", "uid", user.ID, "admin", user.IsAdmin)
	s.apply(ticket, user, nil, true)
}

func (s *Store) verify(ctx context.Context, ident models.Identity) (*models.User, error) {
	token, err := s.provider.IDToken(ctx)
	if err != nil {
		return nil, fail(ErrAuth, "Failed to get authentication token", err)
	}
	return s.verifier.Verify(ctx, ident, token)
}

// begin starts a mutation. Only the most recently begun mutation may
// apply its result.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked()
}

func (s *Store) beginLocked() uint64 {
	s.ticket++
	return s.ticket
}

// apply stores the result of mutation ticket if no newer one began. settle
// ends the initial loading phase either way.
func (s *Store) apply(ticket uint64, user *models.User, err error, settle bool) bool {
	s.mu.Lock()
	applied := ticket == s.ticket
	changed := applied
	if applied {
		s.user, s.err = user.Clone(), err
	}
	if settle && s.loading {
		s.loading = false
		changed = true
		s.readyOnce.Do(func() { close(s.ready) })
	}
	snap, watchers := s.snapshotLocked(), s.watchersLocked()
	s.mu.Unlock()

	if changed {
		notify(watchers, snap)
	}
	return applied
}

// replaceUser swaps the record of the user with id through fn. It fails if
// that user is no longer signed in.
func (s *Store) replaceUser(id string, fn func(prev *models.User) *models.User) (*models.User, bool) {
	s.mu.Lock()
	if s.user == nil || s.user.ID != id {
		s.mu.Unlock()
		return nil, false
	}
	s.beginLocked()
	s.user = fn(s.user.Clone())
	out := s.user.Clone()
	snap, watchers := s.snapshotLocked(), s.watchersLocked()
	s.mu.Unlock()

	notify(watchers, snap)
	return out, true
}

func (s *Store) watchersLocked() []func(State) {
	out := make([]func(State), 0, len(s.watchers))
	for _, w := range s.watchers {
		out = append(out, w)
	}
	return out
}

func notify(watchers []func(State), st State) {
	for _, w := range watchers {
		w(st)
	}
}

func (s *Store) clearArtifacts(ctx context.Context) {
	if s.artifacts == nil {
		return
	}
	if err := s.artifacts.Clear(ctx); err != nil {
		s.log.Warn(ctx, "clear session artifacts failed", "error", err)
	}
}

func (s *Store) recordError(ctx context.Context, err error) {
	if s.artifacts == nil {
		return
	}
	if rerr := s.artifacts.RecordError(ctx, err.Error()); rerr != nil {
		s.log.Warn(ctx, "record session error failed", "error", rerr)
	}
}
