// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// DefaultScope is requested when AGILITY_SCOPE is unset
	DefaultScope = "openid profile email offline_access"

	envProduction = "production"
)

// Config holds every environment driven setting
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Region        string `env:"AGILITY_REGION"`
	OAuthBaseURL  string `env:"AGILITY_OAUTH_BASE_URL"`
	ClientID      string `env:"AGILITY_CLIENT_ID"`
	ClientSecret  string `env:"AGILITY_CLIENT_SECRET"`
	RedirectURI   string `env:"AGILITY_REDIRECT_URI"`
	Scope         string `env:"AGILITY_SCOPE" envDefault:"openid profile email offline_access"`
	MgmtAPIURL    string `env:"AGILITY_MGMT_API_URL"`
	OIDCIssuerURL string `env:"OIDC_ISSUER_URL"`

	CookieDomain string `env:"COOKIE_DOMAIN"`
	CookieSecure *bool  `env:"COOKIE_SECURE"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"agility_auth.db"`

	ProtectedRoutes []string `env:"PROTECTED_ROUTES" envSeparator:"," envDefault:"/protected"`
	AuthRoutes      []string `env:"AUTH_ROUTES" envSeparator:"," envDefault:"/"`
	LoginPath       string   `env:"LOGIN_PATH" envDefault:"/"`
	ProtectedPath   string   `env:"PROTECTED_PATH" envDefault:"/protected"`

	// CallbackAddr is where the CLI listens for the authorization redirect
	CallbackAddr string `env:"CALLBACK_ADDR" envDefault:"localhost:8765"`
}

// Load reads .env files (when present) and parses the environment
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load the env vars: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, envProduction)
}

// SecureCookies reports whether cookies get the Secure attribute.
// COOKIE_SECURE wins over the environment default.
func (c *Config) SecureCookies() bool {
	if c.CookieSecure != nil {
		return *c.CookieSecure
	}
	return c.IsProduction()
}

// CLIRedirectURI is the redirect URI used by the loopback login flow
func (c *Config) CLIRedirectURI() string {
	if c.RedirectURI != "" {
		return c.RedirectURI
	}
	return "http://" + c.CallbackAddr + "/auth-callback"
}

// ServerRedirectURI is the redirect URI used by the web popup flow
func (c *Config) ServerRedirectURI() string {
	if c.RedirectURI != "" {
		return c.RedirectURI
	}
	return "http://localhost:" + c.Port + "/auth-callback"
}
