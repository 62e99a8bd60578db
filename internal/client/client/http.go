package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id for correlating client and
// server logs.
const RequestIDHeader = "X-Request-Id"

// HTTPClient talks to the notehub REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the API rooted at baseURL. A zero
// timeout means no client-side timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q: scheme and host required", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type envelope[T any] struct {
	Data          T      `json:"data"`
	Message       string `json:"message"`
	WalletBalance *int   `json:"walletBalance"`
	FileURL       string `json:"fileUrl"`
}

type call struct {
	method   string
	path     string
	token    string
	query    url.Values
	body     any
	raw      io.Reader
	rawType  string
	fallback string
}

func (c *HTTPClient) endpoint(path string, q url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// send performs the request and returns the response only for 2xx replies.
// The caller closes the body.
func (c *HTTPClient) send(ctx context.Context, cl call) (*http.Response, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case cl.raw != nil:
		body, contentType = cl.raw, cl.rawType
	case cl.body != nil:
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", cl.path, err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl.path, cl.query), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", cl.method, "path", cl.path, "error", err)
		return nil, fmt.Errorf("%s %s: %w: %w", cl.method, cl.path, ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		rerr := requestError(resp, cl.fallback)
		c.log.Debug(ctx, "request rejected", "method", cl.method, "path", cl.path, "status", resp.StatusCode)
		return nil, rerr
	}
	return resp, nil
}

func requestError(resp *http.Response, fallback string) error {
	var body struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &RequestError{Status: resp.StatusCode, Message: msg}
}

func do[T any](ctx context.Context, c *HTTPClient, cl call) (*envelope[T], error) {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s %s: %w: %w", cl.method, cl.path, ErrMalformedResponse, err)
	}
	return &env, nil
}

func malformed(cl string, what string) error {
	return fmt.Errorf("%s: %w: missing %s", cl, ErrMalformedResponse, what)
}

func (c *HTTPClient) Verify(ctx context.Context, token string) (*models.User, error) {
	env, err := do[*models.User](ctx, c, call{
		method: http.MethodPost, path: "auth/verify", token: token,
		fallback: "Failed to verify user",
	})
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, malformed("auth/verify", "data")
	}
	return env.Data, nil
}

func (c *HTTPClient) AdminLogin(ctx context.Context, email, password string) (string, error) {
	env, err := do[struct {
		CustomToken string `json:"customToken"`
	}](ctx, c, call{
		method: http.MethodPost, path: "auth/admin/login",
		body:     map[string]string{"email": email, "password": password},
		fallback: "Invalid credentials",
	})
	if err != nil {
		return "", err
	}
	if env.Data.CustomToken == "" {
		return "", malformed("auth/admin/login", "customToken")
	}
	return env.Data.CustomToken, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, token string, req ProfileRequest) (*models.UserPatch, error) {
	env, err := do[*models.UserPatch](ctx, c, call{
		method: http.MethodPut, path: "auth/profile", token: token, body: req,
		fallback: "Failed to update profile",
	})
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return &models.UserPatch{}, nil
	}
	return env.Data, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context, token string, f models.NoteFilter) ([]models.Note, error) {
	q := url.Values{}
	setIf(q, "semester", f.Semester)
	setIf(q, "branch", f.Branch)
	setIf(q, "subject", f.Subject)

	env, err := do[[]models.Note](ctx, c, call{
		method: http.MethodGet, path: "notes", token: token, query: q,
		fallback: "Failed to fetch notes",
	})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *HTTPClient) Subjects(ctx context.Context, semester, branch string) ([]string, error) {
	q := url.Values{}
	setIf(q, "semester", semester)
	setIf(q, "branch", branch)

	env, err := do[[]string](ctx, c, call{
		method: http.MethodGet, path: "notes/subjects", query: q,
		fallback: "Failed to fetch subjects",
	})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// SiteStats fetches the public counters. The request is anonymous.
func (c *HTTPClient) SiteStats(ctx context.Context) (models.SiteStats, error) {
	env, err := do[models.SiteStats](ctx, c, call{
		method: http.MethodGet, path: "notes/stats",
		fallback: "Failed to fetch stats",
	})
	if err != nil {
		return models.SiteStats{}, err
	}
	return env.Data, nil
}

// DownloadNote streams the note file. The caller closes the reader.
func (c *HTTPClient) DownloadNote(ctx context.Context, token, id string) (io.ReadCloser, error) {
	resp, err := c.send(ctx, call{
		method: http.MethodGet, path: "notes/" + url.PathEscape(id) + "/download", token: token,
		fallback: "Failed to download note",
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *HTTPClient) NoteDownloadURL(ctx context.Context, token, id string) (string, error) {
	path := "notes/" + url.PathEscape(id) + "/download-url"
	env, err := do[struct {
		URL string `json:"url"`
	}](ctx, c, call{
		method: http.MethodGet, path: path, token: token,
		fallback: "Failed to get download link",
	})
	if err != nil {
		return "", err
	}
	if env.Data.URL == "" {
		return "", malformed(path, "url")
	}
	return env.Data.URL, nil
}

func (c *HTTPClient) CreateNote(ctx context.Context, token string, note models.NewNote) (*models.Note, error) {
	env, err := do[*models.Note](ctx, c, call{
		method: http.MethodPost, path: "notes", token: token, body: note,
		fallback: "Failed to create note",
	})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *HTTPClient) AdminStats(ctx context.Context, token string) (models.Stats, error) {
	env, err := do[models.Stats](ctx, c, call{
		method: http.MethodGet, path: "notes/admin/stats", token: token,
		fallback: "Failed to fetch stats",
	})
	if err != nil {
		return models.Stats{}, err
	}
	return env.Data, nil
}

func (c *HTTPClient) AdminNotes(ctx context.Context, token string) ([]models.Note, error) {
	env, err := do[[]models.Note](ctx, c, call{
		method: http.MethodGet, path: "notes/admin", token: token,
		fallback: "Failed to fetch notes",
	})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *HTTPClient) AdminUsers(ctx context.Context, token string) ([]models.AdminUser, error) {
	env, err := do[[]models.AdminUser](ctx, c, call{
		method: http.MethodGet, path: "notes/admin/users", token: token,
		fallback: "Failed to fetch users",
	})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *HTTPClient) ApproveNote(ctx context.Context, token, id string) error {
	_, err := do[json.RawMessage](ctx, c, call{
		method: http.MethodPut, path: "notes/" + url.PathEscape(id) + "/approve", token: token,
		fallback: "Failed to approve note",
	})
	return err
}

func (c *HTTPClient) RejectNote(ctx context.Context, token, id string) error {
	_, err := do[json.RawMessage](ctx, c, call{
		method: http.MethodPut, path: "notes/" + url.PathEscape(id) + "/reject", token: token,
		fallback: "Failed to reject note",
	})
	return err
}

func (c *HTTPClient) DeleteNote(ctx context.Context, token, id string) error {
	_, err := do[json.RawMessage](ctx, c, call{
		method: http.MethodDelete, path: "notes/" + url.PathEscape(id), token: token,
		fallback: "Failed to delete note",
	})
	return err
}

func (c *HTTPClient) DeleteUser(ctx context.Context, token, id string) error {
	_, err := do[json.RawMessage](ctx, c, call{
		method: http.MethodDelete, path: "notes/admin/users/" + url.PathEscape(id), token: token,
		fallback: "Failed to delete user",
	})
	return err
}

func (c *HTTPClient) RestoreWallet(ctx context.Context, token, id string) (int, error) {
	path := "admin/users/" + url.PathEscape(id) + "/restore-wallet"
	env, err := do[struct {
		Wallet *int `json:"wallet"`
	}](ctx, c, call{
		method: http.MethodPatch, path: path, token: token,
		fallback: "Failed to restore wallet",
	})
	if err != nil {
		return 0, err
	}
	if env.Data.Wallet == nil {
		return 0, malformed(path, "wallet")
	}
	return *env.Data.Wallet, nil
}

func (c *HTTPClient) ListPapers(ctx context.Context, token string, f models.PaperFilter) ([]models.QuestionPaper, int, error) {
	q := url.Values{}
	setIf(q, "semester", f.Semester)
	setIf(q, "branch", f.Branch)

	env, err := do[[]models.QuestionPaper](ctx, c, call{
		method: http.MethodGet, path: "question-papers", token: token, query: q,
		fallback: "Failed to fetch question papers",
	})
	if err != nil {
		return nil, 0, err
	}
	return env.Data, deref(env.WalletBalance), nil
}

func (c *HTTPClient) MyPapers(ctx context.Context, token string) ([]models.QuestionPaper, int, error) {
	env, err := do[[]models.QuestionPaper](ctx, c, call{
		method: http.MethodGet, path: "question-papers/my-papers", token: token,
		fallback: "Failed to fetch your papers",
	})
	if err != nil {
		return nil, 0, err
	}
	return env.Data, deref(env.WalletBalance), nil
}

// PurchasePaper buys the paper and returns the wallet balance reported by
// the server.
func (c *HTTPClient) PurchasePaper(ctx context.Context, token, id string) (int, error) {
	path := "question-papers/purchase/" + url.PathEscape(id)
	env, err := do[json.RawMessage](ctx, c, call{
		method: http.MethodPost, path: path, token: token,
		fallback: "Failed to purchase question paper",
	})
	if err != nil {
		return 0, err
	}
	if env.WalletBalance == nil {
		return 0, malformed(path, "walletBalance")
	}
	return *env.WalletBalance, nil
}

func (c *HTTPClient) PaperDownloadURL(ctx context.Context, token, id string) (string, error) {
	path := "question-papers/download/" + url.PathEscape(id)
	env, err := do[json.RawMessage](ctx, c, call{
		method: http.MethodGet, path: path, token: token,
		fallback: "Failed to download question paper",
	})
	if err != nil {
		return "", err
	}
	if env.FileURL == "" {
		return "", malformed(path, "fileUrl")
	}
	return env.FileURL, nil
}

// UploadPaper posts the paper as multipart form data with the file under
// the "file" field.
func (c *HTTPClient) UploadPaper(ctx context.Context, token string, p models.NewPaper, fileName, contentType string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"title", p.Title},
		{"semester", p.Semester},
		{"branch", p.Branch},
		{"price", strconv.Itoa(p.Price)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	_, err = do[json.RawMessage](ctx, c, call{
		method: http.MethodPost, path: "question-papers/upload", token: token,
		raw: &buf, rawType: w.FormDataContentType(),
		fallback: "Failed to upload question paper",
	})
	return err
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
