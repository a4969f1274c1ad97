// Package securestore persists the client's small secrets and advisory
// records: the master-key verification hash, per-content session tokens,
// and per-content trusted-device lists. Values live as individual files
// with 0600 permissions under a 0700 directory; writes go through a
// temp file and rename so a crash never leaves a torn value.
package securestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Well-known keys. Content-scoped keys are built with AccessTokenKey and
// TrustedDevicesKey.
const (
	MasterKeyHashKey = "master_key_hash"

	accessTokenPrefix    = "access_token_"
	trustedDevicesPrefix = "trusted_devices_"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// AccessTokenKey returns the store key for a content session token.
func AccessTokenKey(contentID string) string {
	return accessTokenPrefix + contentID
}

// TrustedDevicesKey returns the store key for a content trusted-device list.
func TrustedDevicesKey(contentID string) string {
	return trustedDevicesPrefix + contentID
}

// Store is a file-backed key/value store. All operations are atomic per
// store: a read-modify-write under the same Store never races with a
// concurrent write.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open creates the store directory if needed and returns a store.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Get returns the value for key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(key)
}

// Set stores value under key.
func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(key, value)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every stored value. Used on session teardown.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// TrustedDevices returns the trusted-device fingerprints for a content ID.
// A missing list is an empty list.
func (s *Store) TrustedDevices(contentID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(TrustedDevicesKey(contentID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse trusted devices: %w", err)
	}
	return list, nil
}

// AddTrustedDevice appends a fingerprint to a content's trusted-device
// list. The read-modify-write runs under the store lock, so concurrent
// adds never lose entries. Adding an already-trusted fingerprint is a
// no-op.
func (s *Store) AddTrustedDevice(contentID, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := TrustedDevicesKey(contentID)

	var list []string
	data, err := s.read(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err == nil {
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("parse trusted devices: %w", err)
		}
	}

	for _, fp := range list {
		if fp == fingerprint {
			return nil
		}
	}
	list = append(list, fingerprint)

	out, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.write(key, out)
}

// IsTrustedDevice reports whether a fingerprint is on a content's
// trusted-device list.
func (s *Store) IsTrustedDevice(contentID, fingerprint string) (bool, error) {
	list, err := s.TrustedDevices(contentID)
	if err != nil {
		return false, err
	}
	for _, fp := range list {
		if fp == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) path(key string) string {
	// Keys are internal constants plus content IDs; sanitize anyway so a
	// hostile content ID cannot escape the store directory.
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

func (s *Store) read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) write(key string, value []byte) error {
	path := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
