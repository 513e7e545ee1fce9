// Package notifier delivers persisted news records to chat services.
// Each implementation owns its transport, payload format and rate limit;
// the notify use case decides when and where to deliver.
package notifier

import (
	"context"

	"feedsift/internal/domain/entity"
)

// Notifier sends a single record to one destination.
// A call makes at most one outbound request; failures are returned, never retried.
type Notifier interface {
	NotifyRecord(ctx context.Context, record *entity.NewsRecord) error
}
