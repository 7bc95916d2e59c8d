package authenticator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/blogem/agility-auth/models"
)

// OpenIDProvider implements the Provider interface for an OpenID Connect
// issuer whose endpoints are found through discovery
type OpenIDProvider struct {
	provider *oidc.Provider
	cfg      OpenIDConfig
}

var _ Provider = (*OpenIDProvider)(nil)

// OpenIDConfig holds OpenID Connect configuration
type OpenIDConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

// NewOpenIDProvider discovers the issuer's endpoints
func NewOpenIDProvider(ctx context.Context, cfg OpenIDConfig) (*OpenIDProvider, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, err
	}

	return &OpenIDProvider{
		provider: provider,
		cfg:      cfg,
	}, nil
}

// AuthCodeURL returns the authorization URL for OpenID Connect
func (p *OpenIDProvider) AuthCodeURL(params AuthURLParams) string {
	return p.config(params.RedirectURI, params.Scope).AuthCodeURL(params.State)
}

// Exchange exchanges an authorization code for tokens
func (p *OpenIDProvider) Exchange(ctx context.Context, params ExchangeParams) (*models.StoredTokenData, error) {
	return exchange(ctx, p.config(params.RedirectURI, ""), p.cfg.HTTPClient, params.Code)
}

func (p *OpenIDProvider) config(redirectURI, scope string) *oauth2.Config {
	scopes := []string{oidc.ScopeOpenID, "profile"}
	if scope != "" {
		scopes = strings.Fields(scope)
	}

	return &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     p.provider.Endpoint(),
		Scopes:       scopes,
	}
}
