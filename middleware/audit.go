package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/models"
	"github.com/blogem/agility-auth/repositories"
)

// AuthAuditLogger records requests under prefix that change the auth state
func AuthAuditLogger(auditRepo repositories.AuditRepository, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			event, ok := auditEvent(r, prefix)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			// Read before the handler clears the cookies
			id, _ := Authenticate(r, time.Now())

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			entry := &models.AuditLogEntry{
				Event:      event,
				Subject:    id.Label(),
				Method:     r.Method,
				Path:       r.URL.Path,
				StatusCode: status,
				UserAgent:  r.UserAgent(),
				IPAddress:  getIPAddress(r),
			}

			// Log asynchronously to avoid blocking request
			ctx := context.WithoutCancel(r.Context())
			go func() {
				if err := auditRepo.Create(ctx, entry); err != nil {
					log.Error().Err(err).Str("event", entry.Event).Msg("Failed to create audit log")
				}
			}()
		})
	}
}

func auditEvent(r *http.Request, prefix string) (string, bool) {
	if !strings.HasPrefix(r.URL.Path, prefix) {
		return "", false
	}

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/login"):
		return models.AuditEventLogin, true
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/callback"):
		return models.AuditEventTokenExchange, true
	case r.Method == http.MethodDelete:
		return models.AuditEventSignOut, true
	case r.Method == http.MethodPost || r.Method == http.MethodPut:
		return models.AuditEventOther, true
	default:
		return "", false
	}
}

// getIPAddress extracts IP address from request, checking X-Forwarded-For first
func getIPAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
