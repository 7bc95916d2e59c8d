// Package tokenstore persists OAuth tokens under the agility_ cookie names.
package tokenstore

import (
	"context"
	"time"

	"github.com/blogem/agility-auth/models"
)

// Cookie names share a fixed prefix
const (
	CookiePrefix       = "agility_"
	AccessTokenCookie  = CookiePrefix + "access_token"
	RefreshTokenCookie = CookiePrefix + "refresh_token"
	ExpiresAtCookie    = CookiePrefix + "expires_at"

	// CookieMaxAge is how long token cookies live in the browser
	CookieMaxAge = 7 * 24 * time.Hour
)

// Storage is a best-effort token store. Implementations log failures
// instead of returning them; a lost write simply reads back as "not
// authenticated".
type Storage interface {
	// SetTokens writes the fields present in tokens and leaves the rest untouched
	SetTokens(ctx context.Context, tokens models.StoredTokenData)
	// GetTokens returns nil when no access token is stored
	GetTokens(ctx context.Context) *models.StoredTokenData
	// ClearTokens removes every stored token
	ClearTokens(ctx context.Context)
}
