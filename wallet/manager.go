package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chinmay1088/walletsdk/crypto"
)

const vaultExt = ".vault"

// ErrNotFound is returned when no key is stored under a name.
var ErrNotFound = errors.New("key not found")

// Store keeps password sealed secrets, one vault file per name.
type Store struct {
	dir string
	mu  sync.Mutex
}

// DefaultDir returns ~/.walletsdk/keys.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".walletsdk", "keys"), nil
}

// NewStore returns a store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid key name %q", name)
	}
	return filepath.Join(s.dir, name+vaultExt), nil
}

// Save seals data with password and writes it under name, replacing any previous key.
func (s *Store) Save(name string, data crypto.VaultData, password string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	vault, err := crypto.NewVault(data, password)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(vault)
	if err != nil {
		return fmt.Errorf("failed to marshal vault: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}
	return nil
}

// Load opens the key stored under name.
func (s *Store) Load(name, password string) (*crypto.VaultData, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	raw, err := os.ReadFile(path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}

	var vault crypto.Vault
	if err := json.Unmarshal(raw, &vault); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault: %w", err)
	}
	return vault.Decrypt(password)
}

// Exists reports whether a key is stored under name.
func (s *Store) Exists(name string) bool {
	path, err := s.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// List returns the stored key names in order.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	entries, err := os.ReadDir(s.dir)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), vaultExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), vaultExt))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the key stored under name.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}
