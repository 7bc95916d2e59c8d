package tokenstore

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/models"
)

// CookieOptions configures the cookies written by a CookieStore
type CookieOptions struct {
	Domain string
	Secure bool
}

// CookieStore keeps tokens in HTTP-only cookies.
// Cookies can only be written onto a response, so SetTokens and
// ClearTokens need a response bound with WithHTTP.
type CookieStore struct {
	options CookieOptions
}

var _ Storage = (*CookieStore)(nil)

// NewCookieStore creates a cookie backed token store
func NewCookieStore(options CookieOptions) *CookieStore {
	return &CookieStore{options: options}
}

// SetTokens writes tokens onto the response bound to ctx
func (s *CookieStore) SetTokens(ctx context.Context, tokens models.StoredTokenData) {
	w, ok := responseFrom(ctx)
	if !ok {
		log.Warn().Msg("Cannot set token cookies without a response, use SetTokensOnResponse instead")
		return
	}
	s.SetTokensOnResponse(w, tokens)
}

// GetTokens reads tokens from the request bound to ctx
func (s *CookieStore) GetTokens(ctx context.Context) *models.StoredTokenData {
	r, ok := requestFrom(ctx)
	if !ok {
		return nil
	}
	return s.GetTokensFromRequest(r)
}

// ClearTokens expires the token cookies on the response bound to ctx
func (s *CookieStore) ClearTokens(ctx context.Context) {
	w, ok := responseFrom(ctx)
	if !ok {
		log.Warn().Msg("Cannot clear token cookies without a response, use ClearCookiesOnResponse instead")
		return
	}
	s.ClearCookiesOnResponse(w)
}

// SetTokensOnResponse writes the present token fields as HTTP-only cookies
func (s *CookieStore) SetTokensOnResponse(w http.ResponseWriter, tokens models.StoredTokenData) {
	if tokens.AccessToken != "" {
		http.SetCookie(w, s.cookie(AccessTokenCookie, tokens.AccessToken))
	}
	if tokens.RefreshToken != "" {
		http.SetCookie(w, s.cookie(RefreshTokenCookie, tokens.RefreshToken))
	}
	if tokens.HasExpiry() {
		http.SetCookie(w, s.cookie(ExpiresAtCookie, strconv.FormatInt(tokens.ExpiresAt, 10)))
	}
}

// GetTokensFromRequest reads tokens from the request's cookie jar
func (s *CookieStore) GetTokensFromRequest(r *http.Request) *models.StoredTokenData {
	access, err := r.Cookie(AccessTokenCookie)
	if err != nil || access.Value == "" {
		return nil
	}

	tokens := &models.StoredTokenData{AccessToken: access.Value}
	if refresh, err := r.Cookie(RefreshTokenCookie); err == nil {
		tokens.RefreshToken = refresh.Value
	}
	if expires, err := r.Cookie(ExpiresAtCookie); err == nil {
		tokens.ExpiresAt = parseExpiresAt(expires.Value)
	}
	return tokens
}

// ClearCookiesOnResponse expires all token cookies
func (s *CookieStore) ClearCookiesOnResponse(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie, ExpiresAtCookie} {
		c := s.cookie(name, "")
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (s *CookieStore) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.options.Domain,
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.options.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// parseExpiresAt treats an unreadable expiry as absent
func parseExpiresAt(value string) int64 {
	if value == "" {
		return 0
	}
	expiresAt, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Warn().Err(err).Str("cookie", ExpiresAtCookie).Msg("Ignoring unreadable token expiry")
		return 0
	}
	return expiresAt
}
