package authenticator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/blogem/agility-auth/models"
)

// ErrMissingCode is returned when an exchange is attempted without a code
var ErrMissingCode = errors.New("authorization code is required")

// AuthURLParams are the inputs of an authorization URL
type AuthURLParams struct {
	RedirectURI string
	Scope       string
	Region      string
	State       string
}

// ExchangeParams are the inputs of an authorization-code exchange
type ExchangeParams struct {
	Code        string
	RedirectURI string
	Region      string
}

// Provider abstracts the remote OAuth endpoint
type Provider interface {
	// AuthCodeURL composes the authorization URL without any network call
	AuthCodeURL(params AuthURLParams) string
	// Exchange trades an authorization code for tokens with a single POST
	Exchange(ctx context.Context, params ExchangeParams) (*models.StoredTokenData, error)
}

// ExchangeError is returned when the token endpoint answers with a non-2xx status
type ExchangeError struct {
	StatusCode int
	Body       string
	err        error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("token exchange failed: %v", e.err)
	}
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *ExchangeError) Unwrap() error {
	return e.err
}

// exchange runs the code exchange on conf and maps the result
func exchange(ctx context.Context, conf *oauth2.Config, httpClient *http.Client, code string) (*models.StoredTokenData, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	oauth2Token, err := conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return nil, &ExchangeError{
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       string(retrieveErr.Body),
				err:        err,
			}
		}
		return nil, &ExchangeError{err: err}
	}

	return tokenFromOAuth2(oauth2Token), nil
}

// tokenFromOAuth2 converts oauth2.Token to our token type
func tokenFromOAuth2(t *oauth2.Token) *models.StoredTokenData {
	token := &models.StoredTokenData{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if !t.Expiry.IsZero() {
		token.ExpiresAt = t.Expiry.Unix()
	}
	if scope, ok := t.Extra("scope").(string); ok {
		token.Scope = scope
	}
	return token
}
