package notify

import "errors"

var (
	// ErrChannelDisabled is returned by Send on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidRecord is returned for a nil record or one without a title.
	ErrInvalidRecord = errors.New("invalid record")
)
