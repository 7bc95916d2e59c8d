// Package mgmtapi is a thin client for the Agility management API calls
// the auth kit needs: the current user, a website's locales and sign-out.
package mgmtapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/blogem/agility-auth/models"
)

// Management API paths, relative to the regional base URL
const (
	mePath      = "/api/v1/users/me"
	localesPath = "/api/v1/instance/%s/locales"
	signOutPath = "/oauth/signout"

	maxErrorBody = 4 << 10
)

// Client is the subset of the management API used by the session controller
type Client interface {
	Me(ctx context.Context) (*models.ServerUser, error)
	GetLocales(ctx context.Context, websiteGUID string) ([]models.LocaleInfo, error)
	SignOut(ctx context.Context) error
}

// Factory builds a Client bound to an access token
type Factory func(accessToken string) Client

// APIError is returned for non-2xx management API responses
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("management API returned status %d: %s", e.StatusCode, e.Body)
}

// HTTPClient talks to the management API with a bearer token
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

// New creates a client for baseURL that authenticates with accessToken.
// base, when non-nil, is the transport wrapped by the bearer token source.
func New(baseURL, accessToken string, base *http.Client) *HTTPClient {
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    oauth2.NewClient(ctx, source),
	}
}

// NewFactory returns a Factory for baseURL
func NewFactory(baseURL string, base *http.Client) Factory {
	return func(accessToken string) Client {
		return New(baseURL, accessToken, base)
	}
}

// Me returns the signed in user
func (c *HTTPClient) Me(ctx context.Context) (*models.ServerUser, error) {
	body, err := c.do(ctx, http.MethodGet, mePath)
	if err != nil {
		return nil, err
	}

	var user models.ServerUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// GetLocales returns the locales of a website
func (c *HTTPClient) GetLocales(ctx context.Context, websiteGUID string) ([]models.LocaleInfo, error) {
	if websiteGUID == "" {
		return nil, fmt.Errorf("website guid is required")
	}

	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf(localesPath, url.PathEscape(websiteGUID)))
	if err != nil {
		return nil, err
	}
	return ParseLocales(body)
}

// SignOut asks the management API to end the session
func (c *HTTPClient) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, signOutPath)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
