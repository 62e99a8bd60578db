package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/repositories/metadata"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// fakeIdentity emulates the accounts:* and securetoken endpoints.
type fakeIdentity struct {
	t *testing.T

	mu            sync.Mutex
	idToken       string
	refreshToken  string
	accountStatus int
	accountError  string
	refreshStatus int
	refreshedID   string
	refreshedRT   string

	lastMethod  string
	lastBody    map[string]any
	lastRefresh url.Values
	lastKey     string
	refreshes   int
}

func newFakeIdentity(t *testing.T, idToken string) (*fakeIdentity, *httptest.Server) {
	f := &fakeIdentity{t: t, idToken: idToken, refreshToken: "rt1", accountStatus: http.StatusOK, refreshStatus: http.StatusOK}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeIdentity) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastKey = r.URL.Query().Get("key")
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/token" {
		_ = r.ParseForm()
		f.lastRefresh = r.PostForm
		f.refreshes++
		if f.refreshStatus != http.StatusOK {
			w.WriteHeader(f.refreshStatus)
			_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  f.refreshedID,
			"id_token":      f.refreshedID,
			"refresh_token": f.refreshedRT,
			"token_type":    "Bearer",
			"expires_in":    "3600",
		})
		return
	}

	f.lastMethod = r.URL.Path
	f.lastBody = map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
	if f.accountStatus != http.StatusOK {
		w.WriteHeader(f.accountStatus)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": f.accountStatus, "message": f.accountError}})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"idToken":      f.idToken,
		"refreshToken": f.refreshToken,
		"expiresIn":    "3600",
	})
}

type fakePersister struct {
	mu      sync.Mutex
	session metadata.Session
	has     bool
	loadErr error

	LastSaved metadata.Session
	Saves     int
	Clears    int
}

func (f *fakePersister) Save(_ context.Context, s metadata.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastSaved, f.session, f.has = s, s, true
	f.Saves++
	return nil
}

func (f *fakePersister) Load(context.Context) (metadata.Session, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.has, f.loadErr
}

func (f *fakePersister) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session, f.has = metadata.Session{}, false
	f.Clears++
	return nil
}

func (f *fakePersister) saved() (metadata.Session, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LastSaved, f.Saves
}

func newTestProvider(srv *httptest.Server, p SessionPersister) *FirebaseProvider {
	return NewFirebaseProvider(Config{
		APIKey:          "api-key",
		IdentityBaseURL: srv.URL,
		SecureTokenURL:  srv.URL + "/token",
		Persister:       p,
	}, nil)
}

// collect subscribes and returns a channel of received events.
func collect(p Provider) (<-chan Event, func()) {
	ch := make(chan Event, 16)
	unsub := p.Subscribe(func(e Event) { ch <- e })
	return ch, unsub
}

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}
