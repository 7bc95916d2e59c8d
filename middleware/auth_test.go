package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/agility-auth/tokenstore"
	"github.com/blogem/agility-auth/userctx"
)

var guardNow = time.Unix(1_700_000_000, 0)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func guardedHandler() (http.Handler, *userctx.Identity) {
	var seen userctx.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = userctx.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	guard := RouteGuard(RouteOptions{
		ProtectedRoutes: []string{"/protected"},
		AuthRoutes:      []string{"/"},
		LoginPath:       "/",
		ProtectedPath:   "/protected",
		Now:             func() time.Time { return guardNow },
	})
	return guard(next), &seen
}

func serve(h http.Handler, path string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokenstore.AccessTokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouteGuard_ProtectedRoute(t *testing.T) {
	valid := signedToken(t, jwt.MapClaims{"sub": "42", "email": "jdoe@example.com", "exp": guardNow.Unix() + 100})
	expired := signedToken(t, jwt.MapClaims{"sub": "42", "exp": guardNow.Unix() - 100})

	tests := []struct {
		name     string
		token    string
		status   int
		location string
	}{
		{name: "valid token", token: valid, status: http.StatusOK},
		{name: "expired token", token: expired, status: http.StatusSeeOther, location: "/"},
		{name: "two segments", token: "header.payload", status: http.StatusSeeOther, location: "/"},
		{name: "no token", token: "", status: http.StatusSeeOther, location: "/"},
		{name: "garbage payload", token: "a.!!!.c", status: http.StatusSeeOther, location: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := guardedHandler()
			rec := serve(h, "/protected/page", tt.token)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestRouteGuard_SetsIdentity(t *testing.T) {
	h, seen := guardedHandler()
	token := signedToken(t, jwt.MapClaims{"sub": "42", "email": "jdoe@example.com", "exp": guardNow.Unix() + 100})

	rec := serve(h, "/protected", token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", seen.Subject)
	assert.Equal(t, "jdoe@example.com", seen.Email)
	assert.Equal(t, guardNow.Unix()+100, seen.ExpiresAt.Unix())
}

func TestRouteGuard_AuthRoute(t *testing.T) {
	h, _ := guardedHandler()
	valid := signedToken(t, jwt.MapClaims{"exp": guardNow.Unix() + 100})

	rec := serve(h, "/", valid)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/protected", rec.Header().Get("Location"))

	rec = serve(h, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Auth routes match exactly
	rec = serve(h, "/other", valid)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouteGuard_ExcludedPaths(t *testing.T) {
	guard := RouteGuard(RouteOptions{
		ProtectedRoutes: []string{"/"},
		Now:             func() time.Time { return guardNow },
	})
	h := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, path := range []string{"/api/auth/status", "/static/app.css", "/_next/data", "/favicon.ico"} {
		rec := serve(h, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := serve(h, "/anything", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", BearerToken(req))

	req.AddCookie(&http.Cookie{Name: tokenstore.AccessTokenCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", BearerToken(req))
}

func TestValidateToken(t *testing.T) {
	_, ok := ValidateToken(signedToken(t, jwt.MapClaims{"sub": "42"}), guardNow)
	assert.False(t, ok, "missing exp")

	_, ok = ValidateToken(signedToken(t, jwt.MapClaims{"exp": guardNow.Unix()}), guardNow)
	assert.False(t, ok, "exp equal to now")

	// Unknown algorithms still pass the structural check
	unsigned := "eyJhbGciOiJYWVoifQ.eyJleHAiOjE3MDAwMDAxMDAsInN1YiI6IjQyIn0.c2ln"
	id, ok := ValidateToken(unsigned, guardNow)
	assert.True(t, ok)
	assert.Equal(t, "42", id.Subject)

	// Only the payload segment has to decode
	opaqueHeader := "eHl6.eyJleHAiOjE3MDAwMDAxMDAsInN1YiI6IjQyIn0.c2ln"
	id, ok = ValidateToken(opaqueHeader, guardNow)
	assert.True(t, ok)
	assert.Equal(t, "42", id.Subject)

	_, ok = ValidateToken("eHl6.eHl6.c2ln", guardNow)
	assert.False(t, ok, "opaque payload")

	expiredOpaqueHeader := "eHl6.eyJleHAiOjE2OTk5OTk5MDB9.c2ln"
	_, ok = ValidateToken(expiredOpaqueHeader, guardNow)
	assert.False(t, ok, "expired payload behind opaque header")
}
