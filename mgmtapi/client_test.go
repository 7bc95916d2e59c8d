package mgmtapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Me(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/me", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"userID": 42,
			"userName": "jdoe",
			"emailAddress": "jdoe@example.com",
			"firstName": null,
			"websiteAccess": [
				{"guid": "abc-u", "websiteName": "Marketing", "displayName": "Marketing Site"},
				{"guid": null, "websiteName": "Docs"}
			]
		}`))
	}))
	defer server.Close()

	client := NewFactory(server.URL+"/", nil)("token-1")
	user, err := client.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), user.UserID)
	assert.Equal(t, "jdoe@example.com", user.EmailAddress)
	require.Len(t, user.WebsiteAccess, 2)
	assert.Equal(t, "abc-u", user.WebsiteAccess[0].GUID)
	assert.Empty(t, user.WebsiteAccess[1].GUID)
}

func TestHTTPClient_GetLocales(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/instance/abc-u/locales", r.URL.Path)
		w.Write([]byte(`[{"code":"en-us","id":1,"name":"English","isDefault":true}]`))
	}))
	defer server.Close()

	locales, err := New(server.URL, "token", nil).GetLocales(context.Background(), "abc-u")
	require.NoError(t, err)
	require.Len(t, locales, 1)
	assert.Equal(t, "en-us", locales[0].LocaleCode)
	assert.True(t, locales[0].IsDefault)
	assert.True(t, locales[0].IsEnabled)
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "expired", nil)

	_, err := client.Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "nope")

	assert.Error(t, client.SignOut(context.Background()))
}

func TestHTTPClient_GetLocalesRequiresGUID(t *testing.T) {
	_, err := New("http://127.0.0.1:1", "token", nil).GetLocales(context.Background(), "")
	assert.Error(t, err)
}
