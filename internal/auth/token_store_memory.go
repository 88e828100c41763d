package auth

import (
	"context"
	"sync"
)

// NewInMemoryTokenStore returns a RefreshTokenStore backed by a map.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{tokens: make(map[string]string)}
}

// InMemoryTokenStore implements RefreshTokenStore for tests and local development.
type InMemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// SaveRefreshToken replaces the stored token of userID.
func (s *InMemoryTokenStore) SaveRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	s.tokens[userID] = token
	s.mu.Unlock()
	return nil
}

// FindRefreshToken returns the stored token of userID.
func (s *InMemoryTokenStore) FindRefreshToken(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	token, ok := s.tokens[userID]
	s.mu.RUnlock()
	if !ok {
		return "", ErrSessionNotFound
	}
	return token, nil
}
