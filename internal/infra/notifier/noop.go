package notifier

import (
	"context"

	"feedsift/internal/domain/entity"
)

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, record *entity.NewsRecord) error

func (f Func) NotifyRecord(ctx context.Context, record *entity.NewsRecord) error {
	return f(ctx, record)
}

// Discard accepts every record and sends nothing. Disabled channels hold it.
var Discard Notifier = Func(func(context.Context, *entity.NewsRecord) error { return nil })
