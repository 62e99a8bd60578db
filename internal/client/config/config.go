package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/notehub/internal/client/identity"
	"github.com/dmitrijs2005/notehub/internal/client/storage"
	"github.com/dmitrijs2005/notehub/internal/flagx"
)

// Provider configures the identity provider.
type Provider struct {
	APIKey            string
	OAuthClientID     string
	OAuthClientSecret string
	IdentityBaseURL   string
	SecureTokenURL    string
	CallbackAddr      string
}

// Config holds runtime settings for the notehub CLI.
//
// Units: RequestTimeout is a time.Duration; zero means no timeout.
type Config struct {
	APIBaseURL        string
	Provider          Provider
	Storage           storage.Config
	SessionDB         string
	PersistSession    bool
	OperatorAvatarURL string
	DownloadDir       string
	RequestTimeout    time.Duration
	LogFormat         string
	LogLevel          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.Provider = Provider{
		IdentityBaseURL: identity.DefaultIdentityBaseURL,
		SecureTokenURL:  identity.DefaultSecureTokenURL,
		CallbackAddr:    identity.DefaultCallbackAddr,
	}
	c.Storage = storage.Config{
		Kind:              storage.KindCloudinary,
		CloudinaryBaseURL: storage.DefaultCloudinaryBaseURL,
	}
	c.SessionDB = "notehub.db"
	c.PersistSession = false
	c.OperatorAvatarURL = "https://ui-avatars.com/api/?name=Admin&background=0D8ABC&color=fff"
	c.DownloadDir = "downloads"
	c.RequestTimeout = 0
	c.LogFormat = "text"
	c.LogLevel = "info"
}

// Load builds a Config from defaults, then the environment (optionally seeded
// from dotenv), then the JSON file named by -c/-config, then flags. Later
// sources take precedence over earlier ones.
func Load(args []string, dotenv string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, dotenv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseJSON(cfg, flagx.ConfigPath(args)); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	cfg.Storage.Timeout = cfg.RequestTimeout
	return cfg, nil
}

// LoadConfig is Load over the process arguments and ./.env.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], ".env")
}
