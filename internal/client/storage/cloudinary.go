package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const DefaultCloudinaryBaseURL = "https://api.cloudinary.com/v1_1"

// Cloudinary uploads with an unsigned upload preset.
type Cloudinary struct {
	baseURL   string
	cloudName string
	preset    string
	http      *http.Client
}

func NewCloudinary(baseURL, cloudName, preset string, h *http.Client) *Cloudinary {
	if baseURL == "" {
		baseURL = DefaultCloudinaryBaseURL
	}
	if h == nil {
		h = http.DefaultClient
	}
	return &Cloudinary{
		baseURL:   strings.TrimRight(baseURL, "/"),
		cloudName: cloudName,
		preset:    preset,
		http:      h,
	}
}

// Endpoint returns the upload URL for f: images go to image/upload and
// everything else to raw/upload.
func (c *Cloudinary) Endpoint(f *File) string {
	kind := "raw"
	if f.IsImage() {
		kind = "image"
	}
	return fmt.Sprintf("%s/%s/%s/upload", c.baseURL, c.cloudName, kind)
}

func (c *Cloudinary) Upload(ctx context.Context, f *File, folder string) (*Result, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if c.preset != "" {
		if err := w.WriteField("upload_preset", c.preset); err != nil {
			return nil, err
		}
	}
	if folder != "" {
		if err := w.WriteField("folder", folder); err != nil {
			return nil, err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	h.Set("Content-Type", f.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(f), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	defer resp.Body.Close()

	var body struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	decodeErr := json.Unmarshal(raw, &body)

	if resp.StatusCode != http.StatusOK {
		msg := body.Error.Message
		if msg == "" {
			msg = "Failed to upload file to Cloudinary"
		}
		return nil, fmt.Errorf("%w: %s", ErrUpload, msg)
	}
	if decodeErr != nil || body.SecureURL == "" {
		return nil, fmt.Errorf("%w: malformed response", ErrUpload)
	}
	return &Result{URL: body.SecureURL, PublicID: body.PublicID}, nil
}
