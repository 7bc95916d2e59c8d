package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/agility-auth/database"
	"github.com/blogem/agility-auth/models"
	"github.com/blogem/agility-auth/repositories"
)

func runCommand(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_PATH", dbPath)

	mgmt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(mgmt.Close)
	t.Setenv("AGILITY_MGMT_API_URL", mgmt.URL)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "error"))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatusCommand_NotSignedIn(t *testing.T) {
	out, err := runCommand(t, filepath.Join(t.TempDir(), "cli.db"), "status")

	require.NoError(t, err)
	assert.Equal(t, "Not signed in.\n", out)
}

func TestStatusCommand_SignedIn(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	repositories.NewTokenRepository(db).SetTokens(context.Background(), models.StoredTokenData{AccessToken: "at", ExpiresAt: 4_102_444_800})
	require.NoError(t, db.Close())

	out, err := runCommand(t, dbPath, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Signed in.")
	assert.Contains(t, out, "Session expires at")
}

func TestLogoutCommand_ClearsTokens(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	repositories.NewTokenRepository(db).SetTokens(context.Background(), models.StoredTokenData{AccessToken: "at"})
	require.NoError(t, db.Close())

	out, err := runCommand(t, dbPath, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Signed out.\n", out)

	out, err = runCommand(t, dbPath, "status")
	require.NoError(t, err)
	assert.Equal(t, "Not signed in.\n", out)
}

func TestWebsitesCommand_RequiresSession(t *testing.T) {
	_, err := runCommand(t, filepath.Join(t.TempDir(), "cli.db"), "websites")

	assert.ErrorContains(t, err, "not signed in")
}

func TestAuditCommand_EmptyLog(t *testing.T) {
	out, err := runCommand(t, filepath.Join(t.TempDir(), "cli.db"), "audit")

	require.NoError(t, err)
	assert.Contains(t, out, "EVENT")
}
