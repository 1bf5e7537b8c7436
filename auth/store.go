package auth

import (
	"sync"
)

// Durable session keys. The auth package is the only writer of these keys,
// other packages go through the State getters.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUsername     = "username"
	KeyTeam         = "team"
)

// Store is the durable key-value storage backing the session, so a restart
// does not lose it. Get returns the empty string for absent keys.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// InMemStore is a Store for tests and ephemeral sessions.
type InMemStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewInMemStore() *InMemStore {
	return &InMemStore{
		values: make(map[string]string),
	}
}

func (s *InMemStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *InMemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *InMemStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}
