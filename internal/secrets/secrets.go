// Package secrets persists small credentials (the API session token) in the
// operating system keychain or an encrypted file keyring.
package secrets

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/99designs/keyring"

	"github.com/bullion/bullion-cli/internal/config"
)

const (
	// Service is the keychain service under which the session token lives.
	Service = "bullion-ecosystem"
	// AccountToken is the account name of the bearer token item.
	AccountToken = "auth-token"
)

// ErrNotFound is returned by Read when no item exists for the identity.
var ErrNotFound = errors.New("secret not found")

// Store saves, reads and deletes secret strings keyed by (service, account).
type Store interface {
	Save(service, account, value string) error
	Read(service, account string) (string, error)
	Delete(service, account string) error
}

// KeyringStore is a Store backed by github.com/99designs/keyring. One keyring
// is opened lazily per service name and reused.
type KeyringStore struct {
	mu    sync.Mutex
	rings map[string]keyring.Keyring
	open  func(service string) (keyring.Keyring, error)
}

var _ Store = (*KeyringStore)(nil)

// NewKeyringStore returns a store that opens keyrings through config.OpenKeyring.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{
		rings: make(map[string]keyring.Keyring),
		open:  config.OpenKeyring,
	}
}

func (s *KeyringStore) ring(service string) (keyring.Keyring, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ring, ok := s.rings[service]; ok {
		return ring, nil
	}
	ring, err := s.open(service)
	if err != nil {
		return nil, err
	}
	s.rings[service] = ring
	return ring, nil
}

// Save stores value, replacing any existing item.
func (s *KeyringStore) Save(service, account, value string) error {
	if strings.TrimSpace(account) == "" {
		return fmt.Errorf("account name is required")
	}
	ring, err := s.ring(service)
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{
		Key:   account,
		Data:  []byte(value),
		Label: service + " " + account,
	}); err != nil {
		return fmt.Errorf("failed to store %s/%s: %w", service, account, err)
	}
	return nil
}

// Read returns the stored value or ErrNotFound.
func (s *KeyringStore) Read(service, account string) (string, error) {
	ring, err := s.ring(service)
	if err != nil {
		return "", err
	}
	item, err := ring.Get(account)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s/%s: %w", service, account, err)
	}
	return string(item.Data), nil
}

// Delete removes the item. Deleting a missing item succeeds.
func (s *KeyringStore) Delete(service, account string) error {
	ring, err := s.ring(service)
	if err != nil {
		return err
	}
	if err := ring.Remove(account); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete %s/%s: %w", service, account, err)
	}
	return nil
}

// MemoryStore is an in-process Store, used when no keyring is wanted.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func memoryKey(service, account string) string {
	return service + "\x00" + account
}

func (m *MemoryStore) Save(service, account, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[memoryKey(service, account)] = value
	return nil
}

func (m *MemoryStore) Read(service, account string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.items[memoryKey(service, account)]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryStore) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, memoryKey(service, account))
	return nil
}
