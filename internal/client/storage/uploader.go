package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notehub/internal/logging"
)

// Result locates an uploaded object.
type Result struct {
	URL      string
	PublicID string
}

// Uploader puts a file into object storage under folder.
type Uploader interface {
	Upload(ctx context.Context, f *File, folder string) (*Result, error)
}

const (
	KindCloudinary = "cloudinary"
	KindS3         = "s3"
)

// Config selects and configures an uploader.
type Config struct {
	Kind string

	CloudinaryBaseURL string
	CloudName         string
	UploadPreset      string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	Timeout time.Duration
}

// New builds the uploader named by cfg.Kind.
func New(ctx context.Context, cfg Config, log logging.Logger) (Uploader, error) {
	switch cfg.Kind {
	case "", KindCloudinary:
		if cfg.CloudName == "" {
			return nil, fmt.Errorf("cloudinary: cloud name required")
		}
		return NewCloudinary(cfg.CloudinaryBaseURL, cfg.CloudName, cfg.UploadPreset, &http.Client{Timeout: cfg.Timeout}), nil
	case KindS3:
		return NewS3(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Kind)
	}
}
