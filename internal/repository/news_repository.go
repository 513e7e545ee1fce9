// Package repository defines the storage contracts used by the use cases.
package repository

import (
	"context"
	"errors"
)

var (
	// ErrWriteFailed is returned when a record could not be stored.
	ErrWriteFailed = errors.New("record write failed")

	// ErrNotFound is returned when no record exists under a key.
	ErrNotFound = errors.New("record not found")
)

// NewsRepository stores formatted news records keyed by collection and key.
// Writing an existing key replaces its content.
type NewsRepository interface {
	Exists(ctx context.Context, collection, key string) (bool, error)
	WriteOrReplace(ctx context.Context, collection, key, content string) error
	Get(ctx context.Context, collection, key string) (string, error)
	List(ctx context.Context, collection string) ([]string, error)
}
