package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blogem/agility-auth/models"
)

type mockAuditRepository struct {
	mock.Mock
}

func (m *mockAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]models.AuditLogEntry)
	return entries, args.Error(1)
}

func TestAuthAuditLogger_RecordsExchange(t *testing.T) {
	repo := &mockAuditRepository{}
	created := make(chan *models.AuditLogEntry, 1)
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created <- args.Get(1).(*models.AuditLogEntry) }).
		Return(nil)

	h := AuthAuditLogger(repo, "/api/auth")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/callback", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	req.Header.Set("User-Agent", "test-agent")
	h.ServeHTTP(httptest.NewRecorder(), req)

	select {
	case entry := <-created:
		assert.Equal(t, models.AuditEventTokenExchange, entry.Event)
		assert.Equal(t, "anonymous", entry.Subject)
		assert.Equal(t, http.StatusBadRequest, entry.StatusCode)
		assert.Equal(t, "10.0.0.1", entry.IPAddress)
		assert.Equal(t, "test-agent", entry.UserAgent)
	case <-time.After(time.Second):
		require.Fail(t, "audit entry was not written")
	}
}

func TestAuthAuditLogger_SkipsReads(t *testing.T) {
	repo := &mockAuditRepository{}
	h := AuthAuditLogger(repo, "/api/auth")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/other", nil))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuditEvent(t *testing.T) {
	tests := []struct {
		method string
		path   string
		event  string
		ok     bool
	}{
		{http.MethodGet, "/api/auth/login", models.AuditEventLogin, true},
		{http.MethodPost, "/api/auth/callback", models.AuditEventTokenExchange, true},
		{http.MethodDelete, "/api/auth/callback", models.AuditEventSignOut, true},
		{http.MethodGet, "/api/auth/status", "", false},
	}

	for _, tt := range tests {
		event, ok := auditEvent(httptest.NewRequest(tt.method, tt.path, nil), "/api/auth")
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.event, event, tt.path)
	}
}

func TestGetIPAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	assert.Equal(t, "192.168.1.5", getIPAddress(req))

	req.Header.Set("X-Real-IP", "10.1.1.1")
	assert.Equal(t, "10.1.1.1", getIPAddress(req))
}
