// Package authenticator wraps the remote OAuth endpoint: authorization
// URLs, the code exchange, and token validity checks over a token store.
package authenticator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/config"
	"github.com/blogem/agility-auth/models"
	"github.com/blogem/agility-auth/tokenstore"
)

// Authenticator combines a Provider with a token store
type Authenticator struct {
	provider Provider
	store    tokenstore.Storage
	now      func() time.Time
}

// Option customizes an Authenticator
type Option func(*Authenticator)

// WithClock overrides the time source used for expiry checks
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// New creates an Authenticator
func New(provider Provider, store tokenstore.Storage, opts ...Option) *Authenticator {
	a := &Authenticator{
		provider: provider,
		store:    store,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewProvider picks the OpenID provider when an issuer is configured and
// the Agility endpoint otherwise
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	if cfg.OIDCIssuerURL != "" {
		provider, err := NewOpenIDProvider(ctx, OpenIDConfig{
			IssuerURL:    cfg.OIDCIssuerURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenID provider: %w", err)
		}
		return provider, nil
	}

	return NewAgilityProvider(AgilityConfig{
		BaseURL:      cfg.OAuthBaseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}), nil
}

// Provider returns the underlying OAuth provider
func (a *Authenticator) Provider() Provider {
	return a.provider
}

// GenerateAuthURL composes the authorization URL
func (a *Authenticator) GenerateAuthURL(params AuthURLParams) string {
	return a.provider.AuthCodeURL(params)
}

// GenerateState returns a fresh CSRF correlation value
func (a *Authenticator) GenerateState() (string, error) {
	return GenerateState()
}

// ExchangeCodeForToken exchanges code for tokens and stores them
func (a *Authenticator) ExchangeCodeForToken(ctx context.Context, params ExchangeParams) (*models.StoredTokenData, error) {
	tokens, err := a.provider.Exchange(ctx, params)
	if err != nil {
		return nil, err
	}

	// The new set replaces the old one; no field of a previous session survives
	a.store.ClearTokens(ctx)
	a.store.SetTokens(ctx, *tokens)
	log.Debug().Bool("refresh_token", tokens.RefreshToken != "").Int64("expires_at", tokens.ExpiresAt).Msg("Token exchange successful")
	return tokens, nil
}

// Tokens returns the stored tokens, or nil
func (a *Authenticator) Tokens(ctx context.Context) *models.StoredTokenData {
	return a.store.GetTokens(ctx)
}

// IsAuthenticated reports whether an access token exists and, when it
// carries an expiry, that expiry is strictly in the future
func (a *Authenticator) IsAuthenticated(ctx context.Context) bool {
	return a.store.GetTokens(ctx).IsValid(a.now())
}

// GetValidAccessToken returns the stored access token when unexpired and
// "" otherwise. Expired sessions are not refreshed.
func (a *Authenticator) GetValidAccessToken(ctx context.Context) string {
	tokens := a.store.GetTokens(ctx)
	if !tokens.IsValid(a.now()) {
		return ""
	}
	return tokens.AccessToken
}

// ClearAuthentication drops the stored tokens. No remote revocation is made.
func (a *Authenticator) ClearAuthentication(ctx context.Context) {
	a.store.ClearTokens(ctx)
}
