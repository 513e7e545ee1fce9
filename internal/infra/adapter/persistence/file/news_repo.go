// Package file stores news records as text files, one directory per
// collection and one file per record key.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"feedsift/internal/observability/metrics"
	"feedsift/internal/repository"
)

const (
	storeName = "file"
	extension = ".txt"
)

// ErrInvalidName is returned for collection names or keys that are not a
// single path element.
var ErrInvalidName = errors.New("invalid collection or key name")

// NewsRepo implements repository.NewsRepository on the local filesystem.
type NewsRepo struct {
	root string
}

// NewNewsRepo creates a file store rooted at root. The directory is created
// on first write.
func NewNewsRepo(root string) *NewsRepo {
	return &NewsRepo{root: root}
}

// Exists reports whether a record file exists for key.
func (repo *NewsRepo) Exists(_ context.Context, collection, key string) (bool, error) {
	defer observe("exists", time.Now())
	path, err := repo.path(collection, key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat record: %w", err)
	}
}

// WriteOrReplace writes content atomically: a temporary file in the
// collection directory is renamed over the record file.
func (repo *NewsRepo) WriteOrReplace(_ context.Context, collection, key, content string) error {
	defer observe("write", time.Now())
	path, err := repo.path(collection, key)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrWriteFailed, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create collection dir: %v", repository.ErrWriteFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", repository.ErrWriteFailed, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write: %v", repository.ErrWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", repository.ErrWriteFailed, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: rename: %v", repository.ErrWriteFailed, err)
	}
	return nil
}

// Get returns the content of the record file for key.
func (repo *NewsRepo) Get(_ context.Context, collection, key string) (string, error) {
	defer observe("get", time.Now())
	path, err := repo.path(collection, key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s/%s", repository.ErrNotFound, collection, key)
	}
	if err != nil {
		return "", fmt.Errorf("read record: %w", err)
	}
	return string(data), nil
}

// List returns the keys of a collection, most recently written first.
// A missing collection is empty.
func (repo *NewsRepo) List(_ context.Context, collection string) ([]string, error) {
	defer observe("list", time.Now())
	if !validName(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, collection)
	}

	entries, err := os.ReadDir(filepath.Join(repo.root, collection))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}

	type record struct {
		key     string
		modTime time.Time
	}
	records := make([]record, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, extension) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		records = append(records, record{key: strings.TrimSuffix(name, extension), modTime: info.ModTime()})
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].modTime.Equal(records[j].modTime) {
			return records[i].modTime.After(records[j].modTime)
		}
		return records[i].key < records[j].key
	})

	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.key)
	}
	return keys, nil
}

func (repo *NewsRepo) path(collection, key string) (string, error) {
	if !validName(collection) || !validName(key) {
		return "", fmt.Errorf("%w: %q/%q", ErrInvalidName, collection, key)
	}
	return filepath.Join(repo.root, collection, key+extension), nil
}

func validName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`) && !strings.HasPrefix(s, ".")
}

func observe(operation string, start time.Time) {
	metrics.RecordStoreOperation(storeName, operation, time.Since(start))
}
