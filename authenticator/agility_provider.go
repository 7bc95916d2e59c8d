package authenticator

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/blogem/agility-auth/models"
)

// DefaultBaseURL is the management endpoint used when no region is given
const DefaultBaseURL = "https://mgmt.aglty.io"

var regionBaseURLs = map[string]string{
	"":          DefaultBaseURL,
	"us":        DefaultBaseURL,
	"usa":       DefaultBaseURL,
	"us2":       "https://mgmt-usa2.aglty.io",
	"usa2":      "https://mgmt-usa2.aglty.io",
	"ca":        "https://mgmt-ca.aglty.io",
	"canada":    "https://mgmt-ca.aglty.io",
	"eu":        "https://mgmt-eu.aglty.io",
	"europe":    "https://mgmt-eu.aglty.io",
	"au":        "https://mgmt-aus.aglty.io",
	"aus":       "https://mgmt-aus.aglty.io",
	"australia": "https://mgmt-aus.aglty.io",
	"dev":       "https://mgmt-dev.aglty.io",
}

// BaseURLForRegion maps a region name to its management host.
// Unknown regions fall back to DefaultBaseURL.
func BaseURLForRegion(region string) string {
	if url, ok := regionBaseURLs[strings.ToLower(strings.TrimSpace(region))]; ok {
		return url
	}
	return DefaultBaseURL
}

// AgilityConfig holds Agility OAuth endpoint configuration
type AgilityConfig struct {
	// BaseURL overrides the region lookup, mostly for tests and proxies
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

// AgilityProvider implements the Provider interface for the Agility
// management OAuth endpoint
type AgilityProvider struct {
	cfg AgilityConfig
}

var _ Provider = (*AgilityProvider)(nil)

// NewAgilityProvider creates a new Agility provider with the given configuration
func NewAgilityProvider(cfg AgilityConfig) *AgilityProvider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &AgilityProvider{cfg: cfg}
}

// BaseURL returns the OAuth base URL for region
func (p *AgilityProvider) BaseURL(region string) string {
	if p.cfg.BaseURL != "" {
		return p.cfg.BaseURL
	}
	return BaseURLForRegion(region)
}

// AuthCodeURL returns the authorization URL for the Agility endpoint
func (p *AgilityProvider) AuthCodeURL(params AuthURLParams) string {
	conf := p.config(params.RedirectURI, params.Region, params.Scope)

	var opts []oauth2.AuthCodeOption
	if params.Region != "" {
		opts = append(opts, oauth2.SetAuthURLParam("region", params.Region))
	}
	return conf.AuthCodeURL(params.State, opts...)
}

// Exchange exchanges an authorization code for tokens
func (p *AgilityProvider) Exchange(ctx context.Context, params ExchangeParams) (*models.StoredTokenData, error) {
	return exchange(ctx, p.config(params.RedirectURI, params.Region, ""), p.cfg.HTTPClient, params.Code)
}

func (p *AgilityProvider) config(redirectURI, region, scope string) *oauth2.Config {
	base := p.BaseURL(region)
	conf := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/oauth/authorize",
			TokenURL:  base + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if scope != "" {
		conf.Scopes = strings.Fields(scope)
	}
	return conf
}
