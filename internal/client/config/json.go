package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/notehub/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent or
// empty fields leave the corresponding Config value alone.
type JsonConfig struct {
	APIBaseURL        string          `json:"api_base_url"`
	FirebaseAPIKey    string          `json:"firebase_api_key"`
	OAuthClientID     string          `json:"oauth_client_id"`
	OAuthClientSecret string          `json:"oauth_client_secret"`
	IdentityBaseURL   string          `json:"identity_base_url"`
	SecureTokenURL    string          `json:"secure_token_url"`
	CallbackAddr      string          `json:"callback_addr"`
	Storage           string          `json:"storage"`
	CloudinaryBaseURL string          `json:"cloudinary_base_url"`
	CloudName         string          `json:"cloudinary_cloud_name"`
	UploadPreset      string          `json:"cloudinary_upload_preset"`
	S3Bucket          string          `json:"s3_bucket"`
	S3Region          string          `json:"s3_region"`
	S3Endpoint        string          `json:"s3_endpoint"`
	S3AccessKey       string          `json:"s3_access_key"`
	S3SecretKey       string          `json:"s3_secret_key"`
	S3PublicBaseURL   string          `json:"s3_public_base_url"`
	SessionDB         string          `json:"session_db"`
	PersistSession    *bool           `json:"persist_session"`
	OperatorAvatarURL string          `json:"operator_avatar_url"`
	DownloadDir       string          `json:"download_dir"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	LogFormat         string          `json:"log_format"`
	LogLevel          string          `json:"log_level"`
}

// parseJSON overlays cfg with the JSON file at path. An empty path is a
// no-op.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.APIBaseURL, jc.APIBaseURL)
	set(&cfg.Provider.APIKey, jc.FirebaseAPIKey)
	set(&cfg.Provider.OAuthClientID, jc.OAuthClientID)
	set(&cfg.Provider.OAuthClientSecret, jc.OAuthClientSecret)
	set(&cfg.Provider.IdentityBaseURL, jc.IdentityBaseURL)
	set(&cfg.Provider.SecureTokenURL, jc.SecureTokenURL)
	set(&cfg.Provider.CallbackAddr, jc.CallbackAddr)
	set(&cfg.Storage.Kind, jc.Storage)
	set(&cfg.Storage.CloudinaryBaseURL, jc.CloudinaryBaseURL)
	set(&cfg.Storage.CloudName, jc.CloudName)
	set(&cfg.Storage.UploadPreset, jc.UploadPreset)
	set(&cfg.Storage.S3Bucket, jc.S3Bucket)
	set(&cfg.Storage.S3Region, jc.S3Region)
	set(&cfg.Storage.S3Endpoint, jc.S3Endpoint)
	set(&cfg.Storage.S3AccessKey, jc.S3AccessKey)
	set(&cfg.Storage.S3SecretKey, jc.S3SecretKey)
	set(&cfg.Storage.S3PublicBaseURL, jc.S3PublicBaseURL)
	set(&cfg.SessionDB, jc.SessionDB)
	set(&cfg.OperatorAvatarURL, jc.OperatorAvatarURL)
	set(&cfg.DownloadDir, jc.DownloadDir)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.LogLevel, jc.LogLevel)

	if jc.PersistSession != nil {
		cfg.PersistSession = *jc.PersistSession
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
