// Package config loads the service configuration from environment variables
// (with optional .env support) and exposes the hosted-backend detector that
// decides between hosted and local-only operation.
package config

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// backendHostSuffix is the domain every hosted-backend project URL lives
// under; anything else is treated as not configured.
const backendHostSuffix = ".supabase.co"

// minAPIKeyLen is the minimum plausible length for a backend API key.
// Real keys are long JWTs; short values are placeholders or typos.
const minAPIKeyLen = 20

// Backend identifies the hosted database service.
type Backend struct {
	// URL is the project endpoint, e.g. https://abcdefgh.supabase.co.
	URL string

	// APIKey is the project API key sent as the apikey header.
	APIKey string
}

// Configured reports whether a hosted backend is usable: the URL must be an
// https endpoint under the hosted-service domain and the key must have a
// plausible length. Pure check, safe to call repeatedly; everything else in
// the service keys its operating mode off this.
func (b Backend) Configured() bool {
	if len(b.APIKey) < minAPIKeyLen {
		return false
	}
	u, err := url.Parse(b.URL)
	if err != nil {
		return false
	}
	if u.Scheme != "https" || u.Host == "" {
		return false
	}
	host := u.Hostname()
	return strings.HasSuffix(host, backendHostSuffix) && len(host) > len(backendHostSuffix)
}

// Migration controls the data-migration behavior.
type Migration struct {
	// ClearPolicy decides what happens to local data after a run that
	// migrated nothing: "always" clears it anyway (the original behavior),
	// "keep-on-total-failure" preserves it so the user can retry.
	ClearPolicy string

	// RunTimeout bounds a whole migration run.
	RunTimeout time.Duration

	// CallTimeout bounds each backend call.
	CallTimeout time.Duration
}

// Migration clear policies.
const (
	ClearAlways             = "always"
	ClearKeepOnTotalFailure = "keep-on-total-failure"
)

// Config is the full service configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	Backend   Backend
	Migration Migration

	// SessionSecret signs API session tokens; SessionTTL bounds their life.
	SessionSecret string
	SessionTTL    time.Duration

	// CacheTTL bounds read-cache freshness.
	CacheTTL time.Duration

	// LocalPath is the on-device store location.
	LocalPath string

	// LogLevel is debug, info, warn or error; LogFormat is text or json.
	LogLevel  string
	LogFormat string

	// Locale selects the user-facing message language (default Spanish,
	// matching the original application).
	Locale string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_ANON_KEY", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("LOCAL_STORE_PATH", "./data/backoffice.db")
	v.SetDefault("MIGRATION_CLEAR_POLICY", ClearAlways)
	v.SetDefault("MIGRATION_RUN_TIMEOUT", "2m")
	v.SetDefault("MIGRATION_CALL_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOCALE", "es")

	cfg := &Config{
		Addr: v.GetString("ADDR"),
		Backend: Backend{
			URL:    strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			APIKey: v.GetString("SUPABASE_ANON_KEY"),
		},
		Migration: Migration{
			ClearPolicy: v.GetString("MIGRATION_CLEAR_POLICY"),
			RunTimeout:  v.GetDuration("MIGRATION_RUN_TIMEOUT"),
			CallTimeout: v.GetDuration("MIGRATION_CALL_TIMEOUT"),
		},
		SessionSecret: v.GetString("SESSION_SECRET"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),
		LocalPath:     v.GetString("LOCAL_STORE_PATH"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		Locale:        v.GetString("LOCALE"),
	}

	if cfg.Migration.ClearPolicy != ClearAlways && cfg.Migration.ClearPolicy != ClearKeepOnTotalFailure {
		cfg.Migration.ClearPolicy = ClearAlways
	}

	return cfg, nil
}
