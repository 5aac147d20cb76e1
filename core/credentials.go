package core

import (
	"strings"
	"sync"
)

// credentialStore holds the client identity and the current bearer token.
// Readers always observe either the previous or the replacement token.
type credentialStore struct {
	mu       sync.RWMutex
	identity ClientIdentity
	token    *SessionToken
}

func newCredentialStore(identity ClientIdentity) *credentialStore {
	return &credentialStore{identity: identity}
}

func (s *credentialStore) Identity() ClientIdentity {
	if s == nil {
		return ClientIdentity{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *credentialStore) Token() (SessionToken, bool) {
	if s == nil {
		return SessionToken{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil || s.token.IsZero() {
		return SessionToken{}, false
	}
	return *s.token, true
}

func (s *credentialStore) SetToken(token SessionToken) {
	if s == nil || strings.TrimSpace(token.Value) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := token
	s.token = &next
}

func (s *credentialStore) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
}
