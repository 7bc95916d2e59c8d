package models

import "time"

// StoredTokenData is the token set kept by a token store.
// Zero values mean "absent": an empty RefreshToken was never issued and
// ExpiresAt == 0 means the token carries no expiry.
type StoredTokenData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"` // epoch seconds
	TokenType    string `json:"tokenType,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// HasExpiry reports whether an expiry timestamp is recorded
func (t *StoredTokenData) HasExpiry() bool {
	return t.ExpiresAt > 0
}

// IsExpired reports whether the token has a recorded expiry at or before now.
// Tokens without an expiry never expire.
func (t *StoredTokenData) IsExpired(now time.Time) bool {
	return t.HasExpiry() && t.ExpiresAt <= now.Unix()
}

// IsValid reports whether the token can be presented at time now
func (t *StoredTokenData) IsValid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && !t.IsExpired(now)
}
