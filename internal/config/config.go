// Package config loads the service configuration from YAML with env
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	// Origin controls domain normalization and redirect construction.
	Origin struct {
		// BaseURL is the canonical public origin, e.g. https://app.talentlink.io
		BaseURL string `yaml:"base_url"`
		// LegacyHosts are deprecated public hosts. Requests arriving on one
		// of these are redirected to BaseURL before any verification runs.
		LegacyHosts []string `yaml:"legacy_hosts"`
	} `yaml:"origin"`

	// AuthProvider is the managed authentication backend (GoTrue-compatible).
	AuthProvider struct {
		BaseURL    string        `yaml:"base_url"`
		ServiceKey string        `yaml:"service_key"`
		JWTSecret  string        `yaml:"jwt_secret"` // HS256 secret for provider-issued access tokens
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"auth_provider"`

	// State configures the signed state token codec.
	State struct {
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"state"`

	Providers struct {
		GitHub struct {
			Enabled      bool     `yaml:"enabled"`
			ClientID     string   `yaml:"client_id"`
			ClientSecret string   `yaml:"client_secret"`
			RedirectURL  string   `yaml:"redirect_url"` // empty => <origin.base_url>/api/oauth/github/callback
			Scopes       []string `yaml:"scopes"`
			StateSecret  string   `yaml:"state_secret"` // per-provider state key; empty => state.secret
		} `yaml:"github"`
	} `yaml:"providers"`

	Referral struct {
		CookieName string `yaml:"cookie_name"`
	} `yaml:"referral"`

	Security struct {
		// TokenCryptKey is the base64(std) 32-byte AES key used to encrypt
		// third-party access tokens at rest.
		TokenCryptKey string `yaml:"token_crypt_key"`
	} `yaml:"security"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
			MaxEntries int    `yaml:"max_entries"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Rate struct {
		Enabled  bool `yaml:"enabled"`
		Callback struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"callback"`
	} `yaml:"rate"`
}

// Load reads the YAML config at path, applies defaults and env overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.AuthProvider.Timeout == 0 {
		c.AuthProvider.Timeout = 10 * time.Second
	}
	if c.State.TTL == 0 {
		c.State.TTL = 10 * time.Minute
	}
	if c.Referral.CookieName == "" {
		c.Referral.CookieName = "tl_ref"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "60s"
	}
	if c.Cache.Memory.MaxEntries == 0 {
		c.Cache.Memory.MaxEntries = 10000
	}
	if c.Rate.Callback.Limit == 0 {
		c.Rate.Callback.Limit = 30
	}
	if c.Rate.Callback.Window == "" {
		c.Rate.Callback.Window = "1m"
	}
	if len(c.Providers.GitHub.Scopes) == 0 {
		c.Providers.GitHub.Scopes = []string{"read:user", "user:email"}
	}

	// validate string durations
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, err
		}
	}
	if _, err := time.ParseDuration(c.Cache.Memory.DefaultTTL); err != nil {
		return nil, err
	}
	if _, err := time.ParseDuration(c.Rate.Callback.Window); err != nil {
		return nil, err
	}

	c.applyEnvOverrides()

	if c.Providers.GitHub.Enabled && strings.TrimSpace(c.Providers.GitHub.RedirectURL) == "" && c.Origin.BaseURL != "" {
		c.Providers.GitHub.RedirectURL = strings.TrimRight(c.Origin.BaseURL, "/") + "/api/oauth/github/callback"
	}
	if strings.TrimSpace(c.Providers.GitHub.StateSecret) == "" {
		c.Providers.GitHub.StateSecret = c.State.Secret
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that the settings the service cannot run without are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Origin.BaseURL) == "" {
		return errors.New("config: origin.base_url is required")
	}
	if strings.TrimSpace(c.State.Secret) == "" {
		return errors.New("config: state.secret is required")
	}
	if strings.TrimSpace(c.AuthProvider.BaseURL) == "" {
		return errors.New("config: auth_provider.base_url is required")
	}
	if strings.EqualFold(c.App.Env, "prod") && len(c.State.Secret) < 32 {
		return fmt.Errorf("config: state.secret too short for prod (%d bytes, want >= 32)", len(c.State.Secret))
	}
	return nil
}

// applyEnvOverrides overlays config.yaml values with environment variables.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("ORIGIN_BASE_URL"); ok {
		c.Origin.BaseURL = v
	}
	if v, ok := getEnvCSV("ORIGIN_LEGACY_HOSTS"); ok {
		c.Origin.LegacyHosts = v
	}
	if v, ok := getEnvStr("AUTH_PROVIDER_URL"); ok {
		c.AuthProvider.BaseURL = v
	}
	if v, ok := getEnvStr("AUTH_PROVIDER_SERVICE_KEY"); ok {
		c.AuthProvider.ServiceKey = v
	}
	if v, ok := getEnvStr("AUTH_PROVIDER_JWT_SECRET"); ok {
		c.AuthProvider.JWTSecret = v
	}
	if v, ok := getEnvStr("STATE_SECRET"); ok {
		c.State.Secret = v
	}
	if v, ok := getEnvDur("STATE_TTL"); ok {
		c.State.TTL = v
	}
	if v, ok := getEnvStr("GITHUB_CLIENT_ID"); ok {
		c.Providers.GitHub.ClientID = v
		c.Providers.GitHub.Enabled = true
	}
	if v, ok := getEnvStr("GITHUB_CLIENT_SECRET"); ok {
		c.Providers.GitHub.ClientSecret = v
	}
	if v, ok := getEnvStr("GITHUB_STATE_SECRET"); ok {
		c.Providers.GitHub.StateSecret = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("TOKEN_CRYPT_KEY"); ok {
		c.Security.TokenCryptKey = v
	}
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}
