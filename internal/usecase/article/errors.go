// Package article persists kept news records. It derives a storage-safe key
// from the title, renders the canonical text layout and writes it through a
// repository.NewsRepository, replacing any record with the same key.
package article

import "errors"

// ErrInvalidRecord indicates that a record failed validation before writing.
var ErrInvalidRecord = errors.New("invalid news record")
