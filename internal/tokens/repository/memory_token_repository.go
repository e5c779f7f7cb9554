// Package repository implements the active and revoked token registries in memory, PostgreSQL
// and MySQL. All implementations are transaction aware through database.GetTx where a
// database is involved.
package repository

import (
	"context"
	"sync"
	"time"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// MemoryActiveTokenRepository keeps active tokens in a map keyed by (subject, class).
type MemoryActiveTokenRepository struct {
	mu     sync.RWMutex
	tokens map[tokensDomain.ActiveTokenKey]tokensDomain.ActiveToken
}

// NewMemoryActiveTokenRepository creates an empty in-memory active token registry.
func NewMemoryActiveTokenRepository() *MemoryActiveTokenRepository {
	return &MemoryActiveTokenRepository{
		tokens: make(map[tokensDomain.ActiveTokenKey]tokensDomain.ActiveToken),
	}
}

func (m *MemoryActiveTokenRepository) Upsert(_ context.Context, token *tokensDomain.ActiveToken) error {
	token.ApplyDefaults(time.Now().UTC())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[token.Key()] = *token
	return nil
}

func (m *MemoryActiveTokenRepository) Find(
	_ context.Context,
	key tokensDomain.ActiveTokenKey,
) (*tokensDomain.ActiveToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[key]
	if !ok {
		return nil, tokensDomain.ErrActiveTokenNotFound
	}
	return &token, nil
}

func (m *MemoryActiveTokenRepository) Delete(_ context.Context, key tokensDomain.ActiveTokenKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, key)
	return nil
}

// MemoryRevokedTokenRepository keeps revoked tokens in a map keyed by (subject, token id).
type MemoryRevokedTokenRepository struct {
	mu     sync.RWMutex
	tokens map[tokensDomain.RevokedTokenKey]tokensDomain.RevokedToken
}

// NewMemoryRevokedTokenRepository creates an empty in-memory revoked token registry.
func NewMemoryRevokedTokenRepository() *MemoryRevokedTokenRepository {
	return &MemoryRevokedTokenRepository{
		tokens: make(map[tokensDomain.RevokedTokenKey]tokensDomain.RevokedToken),
	}
}

// Insert stores token. An existing record for the same key is kept.
func (m *MemoryRevokedTokenRepository) Insert(_ context.Context, token *tokensDomain.RevokedToken) error {
	token.ApplyDefaults(time.Now().UTC())

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tokens[token.Key()]; !exists {
		m.tokens[token.Key()] = *token
	}
	return nil
}

func (m *MemoryRevokedTokenRepository) Find(
	_ context.Context,
	key tokensDomain.RevokedTokenKey,
) (*tokensDomain.RevokedToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[key]
	if !ok {
		return nil, tokensDomain.ErrRevokedTokenNotFound
	}
	return &token, nil
}

// DeleteExpiredBefore removes every record with ExpiresAt strictly before cutoff.
func (m *MemoryRevokedTokenRepository) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for key, token := range m.tokens {
		if token.ExpiresAt.Before(cutoff) {
			delete(m.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}
