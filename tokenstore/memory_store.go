package tokenstore

import (
	"context"
	"sync"

	"github.com/blogem/agility-auth/models"
)

// MemoryStore keeps tokens for the lifetime of the process
type MemoryStore struct {
	mu     sync.RWMutex
	tokens *models.StoredTokenData
}

var _ Storage = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetTokens merges the present fields into the stored set
func (s *MemoryStore) SetTokens(_ context.Context, tokens models.StoredTokenData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens == nil {
		s.tokens = &models.StoredTokenData{}
	}
	Merge(s.tokens, tokens)
}

// GetTokens returns a copy of the stored set
func (s *MemoryStore) GetTokens(_ context.Context) *models.StoredTokenData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tokens == nil || s.tokens.AccessToken == "" {
		return nil
	}
	tokens := *s.tokens
	return &tokens
}

// ClearTokens drops the stored set
func (s *MemoryStore) ClearTokens(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
}

// Merge copies the fields present in src onto dst
func Merge(dst *models.StoredTokenData, src models.StoredTokenData) {
	if src.AccessToken != "" {
		dst.AccessToken = src.AccessToken
	}
	if src.RefreshToken != "" {
		dst.RefreshToken = src.RefreshToken
	}
	if src.HasExpiry() {
		dst.ExpiresAt = src.ExpiresAt
	}
	if src.TokenType != "" {
		dst.TokenType = src.TokenType
	}
	if src.Scope != "" {
		dst.Scope = src.Scope
	}
}
