package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/tokenstore"
	"github.com/blogem/agility-auth/userctx"
)

// DefaultExcludedPrefixes are never inspected by the route guard
var DefaultExcludedPrefixes = []string{"/api", "/static", "/_next", "/favicon.ico"}

// RouteOptions configures RouteGuard
type RouteOptions struct {
	// ProtectedRoutes are path prefixes that need a live token
	ProtectedRoutes []string
	// AuthRoutes are exact paths that signed in users are sent away from
	AuthRoutes       []string
	LoginPath        string
	ProtectedPath    string
	ExcludedPrefixes []string
	Now              func() time.Time
}

func (o *RouteOptions) setDefaults() {
	if o.LoginPath == "" {
		o.LoginPath = "/"
	}
	if o.ProtectedPath == "" {
		o.ProtectedPath = "/protected"
	}
	if o.ExcludedPrefixes == nil {
		o.ExcludedPrefixes = DefaultExcludedPrefixes
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// RouteGuard redirects unauthenticated requests away from protected routes
// and authenticated requests away from login routes
func RouteGuard(opts RouteOptions) func(http.Handler) http.Handler {
	opts.setDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if hasAnyPrefix(path, opts.ExcludedPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			id, authenticated := Authenticate(r, opts.Now())
			log.Debug().Str("path", path).Bool("authenticated", authenticated).Msg("Route guard check")

			if hasAnyPrefix(path, opts.ProtectedRoutes) && !authenticated {
				http.Redirect(w, r, opts.LoginPath, http.StatusSeeOther)
				return
			}

			if slices.Contains(opts.AuthRoutes, path) && authenticated {
				http.Redirect(w, r, opts.ProtectedPath, http.StatusSeeOther)
				return
			}

			if authenticated {
				r = r.WithContext(userctx.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken returns the access token from the agility_access_token
// cookie, falling back to the Authorization header
func BearerToken(r *http.Request) string {
	if c, err := r.Cookie(tokenstore.AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authenticate checks the request's token structurally. It reports false
// for missing, malformed or expired tokens.
func Authenticate(r *http.Request, now time.Time) (userctx.Identity, bool) {
	token := BearerToken(r)
	if token == "" {
		return userctx.Identity{}, false
	}
	return ValidateToken(token, now)
}

// ValidateToken decodes a JWT without verifying its signature and checks
// that it carries a numeric exp after now
func ValidateToken(token string, now time.Time) (userctx.Identity, bool) {
	claims, err := unverifiedClaims(token)
	if err != nil {
		log.Debug().Err(err).Msg("Token is malformed")
		return userctx.Identity{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return userctx.Identity{}, false
	}
	if exp.Unix() <= now.Unix() {
		return userctx.Identity{}, false
	}

	sub, _ := claims.GetSubject()
	id := userctx.Identity{Subject: sub, ExpiresAt: exp.Time}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	return id, true
}

// unverifiedClaims decodes the payload segment of a three segment token.
// Only the payload has to be readable; the header may be opaque.
func unverifiedClaims(token string) (jwt.MapClaims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(token, claims)
	switch {
	case err == nil, errors.Is(err, jwt.ErrTokenUnverifiable):
		// An unknown alg still leaves the claims decoded
		return claims, nil
	case !errors.Is(err, jwt.ErrTokenMalformed):
		return nil, err
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, err
	}
	payload, decodeErr := parser.DecodeSegment(parts[1])
	if decodeErr != nil {
		return nil, fmt.Errorf("decode payload: %w", decodeErr)
	}

	claims = jwt.MapClaims{}
	if decodeErr := json.Unmarshal(payload, &claims); decodeErr != nil {
		return nil, fmt.Errorf("decode payload: %w", decodeErr)
	}
	return claims, nil
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
