// Package secrets provides read-only credential lookup by name.
//
// Oracles resolve their API key on every call instead of at startup, so a
// missing or rotated key only affects the calls made while it is missing.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrCredentialNotFound is returned when no store holds the requested name.
var ErrCredentialNotFound = errors.New("credential not found")

// Store looks up credentials by name.
type Store interface {
	Lookup(name string) (string, error)
}

// EnvStore reads credentials from environment variables.
type EnvStore struct {
	// Prefix is prepended to every name, e.g. "FEEDSIFT_".
	Prefix string
}

// Lookup returns the trimmed value of Prefix+name.
func (s EnvStore) Lookup(name string) (string, error) {
	v, ok := os.LookupEnv(s.Prefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s", ErrCredentialNotFound, name)
	}
	return strings.TrimSpace(v), nil
}

// FileStore reads credentials from a flat YAML mapping of name to value.
// The file is re-read when its modification time changes.
type FileStore struct {
	path string

	mu      sync.RWMutex
	modTime time.Time
	values  map[string]string
}

// NewFileStore loads path. The file must exist and parse.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup returns the value stored under name.
func (s *FileStore) Lookup(name string) (string, error) {
	if err := s.refresh(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	v := strings.TrimSpace(s.values[name])
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrCredentialNotFound, name)
	}
	return v, nil
}

func (s *FileStore) refresh() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat secrets file: %w", err)
	}
	s.mu.RLock()
	unchanged := info.ModTime().Equal(s.modTime)
	s.mu.RUnlock()
	if unchanged {
		return nil
	}
	return s.reload()
}

func (s *FileStore) reload() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat secrets file: %w", err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read secrets file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse secrets file: %w", err)
	}

	s.mu.Lock()
	s.values = values
	s.modTime = info.ModTime()
	s.mu.Unlock()
	return nil
}

// Chain tries each store in order and returns the first hit.
type Chain []Store

// Lookup implements Store.
func (c Chain) Lookup(name string) (string, error) {
	var errs []error
	for _, s := range c {
		v, err := s.Lookup(name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrCredentialNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %s: %v", ErrCredentialNotFound, name, errors.Join(errs...))
	}
	return "", fmt.Errorf("%w: %s", ErrCredentialNotFound, name)
}

// Open returns the file store at path chained before the environment, or
// the environment alone when path is empty.
func Open(path string) (Store, error) {
	if path == "" {
		return EnvStore{}, nil
	}
	fs, err := NewFileStore(path)
	if err != nil {
		return nil, err
	}
	return Chain{fs, EnvStore{}}, nil
}
