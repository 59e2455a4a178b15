// Package credentials owns the OAuth credentials used against the upstream
// API. The access token is the only mutable value: it is replaced in place
// after a successful refresh and written through to durable storage so the
// next run starts with it.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Credentials is the full credential set read at startup.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// Persister durably records a refreshed access token.
type Persister interface {
	PersistAccessToken(ctx context.Context, token string) error
}

// ErrEmptyToken is returned when asked to store an empty access token.
var ErrEmptyToken = errors.New("access token is empty")

// Store guards the credential set. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	creds     Credentials
	persister Persister
}

// NewStore builds a Store. A nil persister keeps refreshed tokens in memory only.
func NewStore(creds Credentials, persister Persister) *Store {
	return &Store{creds: creds, persister: persister}
}

// AccessToken returns the current access token.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// Snapshot returns a copy of the full credential set.
func (s *Store) Snapshot() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// SetAccessToken replaces the access token in memory, then writes it through
// to the persister. The in-memory value is updated even when persisting fails.
func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	s.creds.AccessToken = token
	persister := s.persister
	s.mu.Unlock()

	if persister == nil {
		return nil
	}
	if err := persister.PersistAccessToken(ctx, token); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	return nil
}
