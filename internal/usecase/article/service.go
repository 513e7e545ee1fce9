package article

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"feedsift/internal/domain/entity"
	"feedsift/internal/observability/logging"
	"feedsift/internal/observability/metrics"
	"feedsift/internal/repository"
)

// Service saves news records. Writes for the same derived key are
// serialized; writes for different keys proceed concurrently.
type Service struct {
	Repo  repository.NewsRepository
	Store string

	locks keyLocks
}

// NewService creates a Service. store labels metrics (file, sqlite, postgres).
func NewService(repo repository.NewsRepository, store string) *Service {
	return &Service{Repo: repo, Store: store}
}

// Save writes record into collection, replacing any record with the same
// derived key. It reports failure as false instead of an error so a batch
// can count it and continue.
func (s *Service) Save(ctx context.Context, collection string, record *entity.NewsRecord) bool {
	logger := logging.FromContext(ctx)

	if err := s.save(ctx, collection, record); err != nil {
		metrics.RecordRecordWritten(s.Store, "failed")
		logger.ErrorContext(ctx, "failed to save record",
			slog.String("collection", collection),
			slog.String("title", record.Title),
			slog.Any("error", err))
		return false
	}
	return true
}

func (s *Service) save(ctx context.Context, collection string, record *entity.NewsRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	key := DeriveKey(record.Title)
	unlock := s.locks.lock(collection + "\x00" + key)
	defer unlock()

	exists, err := s.Repo.Exists(ctx, collection, key)
	if err != nil {
		// The write below decides the outcome; the lookup only labels it.
		logging.FromContext(ctx).WarnContext(ctx, "record existence check failed",
			slog.String("key", key),
			slog.Any("error", err))
	}

	if err := s.Repo.WriteOrReplace(ctx, collection, key, FormatRecord(record)); err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, key, err)
	}

	status := "created"
	if exists {
		status = "replaced"
	}
	metrics.RecordRecordWritten(s.Store, status)
	logging.FromContext(ctx).DebugContext(ctx, "record written",
		slog.String("collection", collection),
		slog.String("key", key),
		slog.String("status", status))
	return nil
}

// keyLocks hands out one mutex per key and forgets it when unused.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

func (k *keyLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
