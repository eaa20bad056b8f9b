package google

import (
	"sync"

	"golang.org/x/oauth2"
)

// TokenStore is an in-process credential cache with an explicit lifecycle:
// created at startup, injected wherever tokens are needed. Tokens do not
// survive a restart; the operator re-authorizes after deploys.
type TokenStore struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Save replaces the stored token.
func (s *TokenStore) Save(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the stored token, or ErrAuthRequired if none exists.
func (s *TokenStore) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, ErrAuthRequired
	}
	return s.token, nil
}

// HasToken reports whether a token has been stored.
func (s *TokenStore) HasToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}
