// Package config loads service settings from the environment, optionally seeded
// from a .env file.
package config

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageFirestore = "firestore"
	StorageMemory    = "memory"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"

	minProductionSecretLen = 32
)

// Config holds every runtime setting of the API server.
type Config struct {
	Port                         string        `mapstructure:"PORT"`
	Env                          string        `mapstructure:"APP_ENV"`
	StorageBackend               string        `mapstructure:"STORAGE_BACKEND"`
	FirebaseProjectID            string        `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	AuthProvider                 string        `mapstructure:"AUTH_PROVIDER"`
	JWTSecret                    string        `mapstructure:"JWT_SECRET"`
	RedisURL                     string        `mapstructure:"REDIS_URL"`
	CacheTTL                     time.Duration `mapstructure:"CACHE_TTL"`
	GitHubToken                  string        `mapstructure:"GITHUB_TOKEN"`
	AllowedOrigins               string        `mapstructure:"ALLOWED_ORIGINS"`
}

var defaults = map[string]any{
	"PORT":                           "8080",
	"APP_ENV":                        "development",
	"STORAGE_BACKEND":                StorageFirestore,
	"FIREBASE_PROJECT_ID":            "",
	"GOOGLE_APPLICATION_CREDENTIALS": "",
	"AUTH_PROVIDER":                  AuthFirebase,
	"JWT_SECRET":                     "",
	"REDIS_URL":                      "",
	"CACHE_TTL":                      "60s",
	"GITHUB_TOKEN":                   "",
	"ALLOWED_ORIGINS":                "",
}

// Load reads envFiles (missing files are ignored) into the process environment
// without overriding variables already set, then decodes and validates Config.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.AuthProvider = strings.ToLower(strings.TrimSpace(cfg.AuthProvider))
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.StorageBackend {
	case StorageFirestore, StorageMemory:
	default:
		return errors.Newf("STORAGE_BACKEND must be %q or %q, got %q", StorageFirestore, StorageMemory, c.StorageBackend)
	}
	switch c.AuthProvider {
	case AuthFirebase:
	case AuthJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
		if c.IsProduction() && len(c.JWTSecret) < minProductionSecretLen {
			return errors.Newf("JWT_SECRET must be at least %d characters in production", minProductionSecretLen)
		}
	default:
		return errors.Newf("AUTH_PROVIDER must be %q or %q, got %q", AuthFirebase, AuthJWT, c.AuthProvider)
	}
	if c.NeedsFirebase() && c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required for firestore storage or firebase auth")
	}
	if c.CacheTTL < 0 {
		return errors.New("CACHE_TTL must not be negative")
	}
	if c.IsProduction() && c.StorageBackend == StorageMemory {
		return errors.New("the memory backend is not allowed in production")
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// NeedsFirebase reports whether Firebase clients must be initialized.
func (c *Config) NeedsFirebase() bool {
	return c.StorageBackend == StorageFirestore || c.AuthProvider == AuthFirebase
}

// Origins splits ALLOWED_ORIGINS on commas. Empty means any origin.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}
