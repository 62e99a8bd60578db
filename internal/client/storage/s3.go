package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/google/uuid"
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig
	newS3Client          = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
	now = time.Now
)

// S3 uploads to an S3-compatible bucket. Objects must be publicly readable
// under PublicBaseURL.
type S3 struct {
	client    objectPutter
	bucket    string
	publicURL string
	log       logging.Logger
}

func NewS3(ctx context.Context, c Config, log logging.Logger) (*S3, error) {
	if c.S3Bucket == "" {
		return nil, fmt.Errorf("s3: bucket required")
	}
	if log == nil {
		log = logging.Nop()
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(c.S3Region)}
	if c.S3AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.S3AccessKey, c.S3SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := newS3Client(cfg, func(o *s3.Options) {
		if c.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(c.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	public := c.S3PublicBaseURL
	if public == "" && c.S3Endpoint != "" {
		public = strings.TrimRight(c.S3Endpoint, "/") + "/" + c.S3Bucket
	}
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.S3Bucket, c.S3Region)
	}

	return &S3{
		client:    client,
		bucket:    c.S3Bucket,
		publicURL: strings.TrimRight(public, "/"),
		log:       log.With("component", "s3"),
	}, nil
}

// objectKey returns folder/yyyy/mm/dd/<uuid><ext>.
func objectKey(folder, name string) string {
	d := now().UTC()
	ext := strings.ToLower(path.Ext(name))
	return path.Join(folder, fmt.Sprintf("%04d/%02d/%02d", d.Year(), d.Month(), d.Day()), uuid.NewString()+ext)
}

func (s *S3) Upload(ctx context.Context, f *File, folder string) (*Result, error) {
	key := objectKey(folder, f.Name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(f.Data),
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(int64(f.Size())),
	})
	if err != nil {
		s.log.Warn(ctx, "put object failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	return &Result{URL: s.publicURL + "/" + key, PublicID: key}, nil
}
