package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "NOTEHUB_"

var lookupEnv = os.LookupEnv

// parseEnv overlays cfg with NOTEHUB_* variables. A dotenv file, if it
// exists, is loaded first; it never overrides variables that are already set.
func parseEnv(cfg *Config, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	strs := map[string]*string{
		"API_BASE_URL":             &cfg.APIBaseURL,
		"FIREBASE_API_KEY":         &cfg.Provider.APIKey,
		"OAUTH_CLIENT_ID":          &cfg.Provider.OAuthClientID,
		"OAUTH_CLIENT_SECRET":      &cfg.Provider.OAuthClientSecret,
		"IDENTITY_BASE_URL":        &cfg.Provider.IdentityBaseURL,
		"SECURE_TOKEN_URL":         &cfg.Provider.SecureTokenURL,
		"CALLBACK_ADDR":            &cfg.Provider.CallbackAddr,
		"STORAGE":                  &cfg.Storage.Kind,
		"CLOUDINARY_BASE_URL":      &cfg.Storage.CloudinaryBaseURL,
		"CLOUDINARY_CLOUD_NAME":    &cfg.Storage.CloudName,
		"CLOUDINARY_UPLOAD_PRESET": &cfg.Storage.UploadPreset,
		"S3_BUCKET":                &cfg.Storage.S3Bucket,
		"S3_REGION":                &cfg.Storage.S3Region,
		"S3_ENDPOINT":              &cfg.Storage.S3Endpoint,
		"S3_ACCESS_KEY":            &cfg.Storage.S3AccessKey,
		"S3_SECRET_KEY":            &cfg.Storage.S3SecretKey,
		"S3_PUBLIC_BASE_URL":       &cfg.Storage.S3PublicBaseURL,
		"SESSION_DB":               &cfg.SessionDB,
		"OPERATOR_AVATAR_URL":      &cfg.OperatorAvatarURL,
		"DOWNLOAD_DIR":             &cfg.DownloadDir,
		"LOG_FORMAT":               &cfg.LogFormat,
		"LOG_LEVEL":                &cfg.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := lookupEnv(EnvPrefix + "PERSIST_SESSION"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sPERSIST_SESSION: %w", EnvPrefix, err)
		}
		cfg.PersistSession = b
	}
	if v, ok := lookupEnv(EnvPrefix + "REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
