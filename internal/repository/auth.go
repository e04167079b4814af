package repository

import (
	"context"
	"sync"
)

// MemoryAuthRepository keeps issued auth tokens and the secret note in memory.
type MemoryAuthRepository struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
	note   string
}

// NewMemoryAuthRepository creates an empty MemoryAuthRepository.
func NewMemoryAuthRepository() *MemoryAuthRepository {
	return &MemoryAuthRepository{tokens: make(map[string]struct{})}
}

// SaveToken records token as valid.
func (r *MemoryAuthRepository) SaveToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = struct{}{}
	return nil
}

// TokenExists reports whether token was issued.
func (r *MemoryAuthRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tokens[token]
	return ok, nil
}

// GetNote returns the current secret note.
func (r *MemoryAuthRepository) GetNote(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.note, nil
}

// SetNote overwrites the secret note.
func (r *MemoryAuthRepository) SetNote(ctx context.Context, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.note = note
	return nil
}
