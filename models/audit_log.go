package models

import "time"

// Auth audit events
const (
	AuditEventLogin         = "login"
	AuditEventTokenExchange = "token_exchange"
	AuditEventSignOut       = "sign_out"
	AuditEventOther         = "other"
)

// AuditLogEntry represents a single authentication mutation
type AuditLogEntry struct {
	ID         string
	Timestamp  time.Time
	Event      string
	Subject    string
	Method     string
	Path       string
	StatusCode int
	UserAgent  string
	IPAddress  string
}
