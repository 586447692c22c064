// Package keystore keeps assistant API keys in the OS credential store.
package keystore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our credential store namespace.
const ServiceName = "askandsign"

// ErrNotFound is returned when no key is stored under the requested name.
var ErrNotFound = errors.New("no key stored")

// Store is a thread-safe wrapper around a keyring.
type Store struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// Open opens the native OS keyring. Only platform backends are allowed;
// there is no plaintext file fallback.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		},
		PassPrefix:    ServiceName,
		WinCredPrefix: ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return New(ring), nil
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// KeyName is the keyring item name for a backend's API key.
func KeyName(backend string) string {
	return backend + "_api_key"
}

// Get returns the key stored for backend.
func (s *Store) Get(backend string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.ring.Get(KeyName(backend))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// Set stores key for backend, replacing any previous value.
func (s *Store) Set(backend, key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ring.Set(keyring.Item{
		Key:         KeyName(backend),
		Data:        []byte(key),
		Label:       ServiceName + " " + backend + " API key",
		Description: "API key used by the askandsign assistant",
	})
}

// Delete removes the key for backend. Removing a missing key is not an error.
func (s *Store) Delete(backend string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ring.Remove(KeyName(backend))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}
