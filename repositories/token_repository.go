package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/blogem/agility-auth/models"
	"github.com/blogem/agility-auth/tokenstore"
)

// Token store keys beyond the three cookie names
const (
	tokenTypeKey = tokenstore.CookiePrefix + "token_type"
	scopeKey     = tokenstore.CookiePrefix + "scope"
)

// TokenRepository persists tokens in SQLite, keyed by cookie name.
// It implements tokenstore.Storage, so failures are logged, not returned.
type TokenRepository interface {
	tokenstore.Storage
}

type sqliteTokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *sql.DB) TokenRepository {
	return &sqliteTokenRepository{db: db}
}

// SetTokens upserts the fields present in tokens
func (r *sqliteTokenRepository) SetTokens(ctx context.Context, tokens models.StoredTokenData) {
	values := map[string]string{}
	if tokens.AccessToken != "" {
		values[tokenstore.AccessTokenCookie] = tokens.AccessToken
	}
	if tokens.RefreshToken != "" {
		values[tokenstore.RefreshTokenCookie] = tokens.RefreshToken
	}
	if tokens.HasExpiry() {
		values[tokenstore.ExpiresAtCookie] = strconv.FormatInt(tokens.ExpiresAt, 10)
	}
	if tokens.TokenType != "" {
		values[tokenTypeKey] = tokens.TokenType
	}
	if tokens.Scope != "" {
		values[scopeKey] = tokens.Scope
	}
	if len(values) == 0 {
		return
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store tokens")
		return
	}
	defer tx.Rollback()

	query := `
		INSERT INTO token_store (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	now := time.Now()
	for name, value := range values {
		if _, err := tx.ExecContext(ctx, query, name, value, now); err != nil {
			log.Error().Err(err).Str("name", name).Msg("Failed to store token")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("Failed to commit tokens")
	}
}

// GetTokens returns nil when no access token is stored
func (r *sqliteTokenRepository) GetTokens(ctx context.Context) *models.StoredTokenData {
	rows, err := r.db.QueryContext(ctx, "SELECT name, value FROM token_store")
	if err != nil {
		log.Error().Err(err).Msg("Failed to read tokens")
		return nil
	}
	defer rows.Close()

	tokens := &models.StoredTokenData{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			log.Error().Err(err).Msg("Failed to scan token")
			return nil
		}

		switch name {
		case tokenstore.AccessTokenCookie:
			tokens.AccessToken = value
		case tokenstore.RefreshTokenCookie:
			tokens.RefreshToken = value
		case tokenstore.ExpiresAtCookie:
			expiresAt, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				log.Warn().Err(err).Msg("Ignoring unreadable token expiry")
				continue
			}
			tokens.ExpiresAt = expiresAt
		case tokenTypeKey:
			tokens.TokenType = value
		case scopeKey:
			tokens.Scope = value
		}
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error().Err(err).Msg("Failed to read tokens")
		return nil
	}

	if tokens.AccessToken == "" {
		return nil
	}
	return tokens
}

// ClearTokens removes every stored token
func (r *sqliteTokenRepository) ClearTokens(ctx context.Context) {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM token_store"); err != nil {
		log.Error().Err(err).Msg("Failed to clear tokens")
	}
}
