package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"feedsift/internal/domain/entity"
	"feedsift/internal/observability/logging"

	"github.com/google/uuid"
)

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 5 * time.Minute
	workerPoolTimeout       = 5 * time.Second
	notificationTimeout     = 30 * time.Second
)

// ChannelHealthStatus is the health of one channel as exposed by the worker.
type ChannelHealthStatus struct {
	Name               string     `json:"name"`
	Enabled            bool       `json:"enabled"`
	CircuitBreakerOpen bool       `json:"circuit_breaker_open"`
	DisabledUntil      *time.Time `json:"disabled_until,omitempty"`
}

// channelCircuit disables a channel after consecutive failures.
type channelCircuit struct {
	mu                  sync.Mutex
	consecutiveFailures int
	disabledUntil       time.Time
}

func (c *channelCircuit) allow(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !now.Before(c.disabledUntil)
}

// record returns true when this failure opened the circuit.
func (c *channelCircuit) record(err error, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.consecutiveFailures = 0
		return false
	}
	c.consecutiveFailures++
	if c.consecutiveFailures < circuitBreakerThreshold {
		return false
	}
	c.consecutiveFailures = 0
	c.disabledUntil = now.Add(circuitBreakerTimeout)
	return true
}

func (c *channelCircuit) openUntil(now time.Time) *time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.Before(c.disabledUntil) {
		until := c.disabledUntil
		return &until
	}
	return nil
}

// Service dispatches records to every enabled channel in background
// goroutines bounded by a worker pool.
type Service struct {
	channels   []Channel
	circuits   map[string]*channelCircuit
	workerPool chan struct{}
	wg         sync.WaitGroup
	now        func() time.Time

	// mu orders wg.Add against Shutdown's Wait
	mu      sync.RWMutex
	closing bool

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService creates a notification service over channels.
//
// Parameters:
//   - channels: Delivery channels; disabled ones are kept for health reporting
//   - maxConcurrent: Maximum deliveries in flight (non-positive means 10)
//
// Returns:
//   - *Service: Running service; call Shutdown to drain in-flight deliveries
func NewService(channels []Channel, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	s := &Service{
		channels:       channels,
		circuits:       make(map[string]*channelCircuit, len(channels)),
		workerPool:     make(chan struct{}, maxConcurrent),
		now:            time.Now,
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	enabled := 0
	for _, ch := range channels {
		s.circuits[ch.Name()] = &channelCircuit{}
		if ch.IsEnabled() {
			enabled++
		}
	}
	channelsEnabled.Set(float64(enabled))
	return s
}

// NotifyRecord schedules delivery of record and returns immediately.
// The caller's context only contributes its logger; delivery is bound to
// the service lifetime instead.
func (s *Service) NotifyRecord(ctx context.Context, record *entity.NewsRecord) {
	if record == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closing {
		return
	}

	logger := logging.FromContext(ctx).With(slog.String("request_id", uuid.NewString()))

	rec := *record
	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		s.wg.Add(1)
		go s.deliver(logger, ch, &rec)
	}
}

func (s *Service) deliver(logger *slog.Logger, ch Channel, record *entity.NewsRecord) {
	defer s.wg.Done()

	inFlight.Inc()
	defer inFlight.Dec()

	logger = logger.With(slog.String("channel", ch.Name()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in notification channel",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	timer := time.NewTimer(workerPoolTimeout)
	defer timer.Stop()
	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-timer.C:
		logger.Warn("notification dropped: worker pool full")
		observeDrop(ch.Name(), dropPoolFull)
		return
	case <-s.shutdownCtx.Done():
		observeDrop(ch.Name(), dropShutdown)
		return
	}

	circuit := s.circuits[ch.Name()]
	if !circuit.allow(s.now()) {
		observeDrop(ch.Name(), dropCircuitOpen)
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, logger)

	start := time.Now()
	err := ch.Send(ctx, record)
	duration := time.Since(start)
	observeDelivery(ch.Name(), err, duration)

	if circuit.record(err, s.now()) {
		logger.Error("circuit breaker opened for channel",
			slog.Int("threshold", circuitBreakerThreshold),
			slog.Duration("disabled_for", circuitBreakerTimeout))
		channelTrips.WithLabelValues(ch.Name()).Inc()
	}

	if err != nil {
		logger.Warn("channel notification failed",
			slog.String("title", record.Title),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return
	}
	logger.Info("channel notification sent",
		slog.String("title", record.Title),
		slog.Duration("send_duration", duration))
}

// GetChannelHealth reports enabled state and circuit state per channel.
func (s *Service) GetChannelHealth() []ChannelHealthStatus {
	now := s.now()
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		until := s.circuits[ch.Name()].openUntil(now)
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: until != nil,
			DisabledUntil:      until,
		})
	}
	return statuses
}

// Shutdown stops accepting records and waits for in-flight sends. When ctx
// expires first the remaining sends are canceled.
func (s *Service) Shutdown(ctx context.Context) error {
	slog.Info("shutting down notification service")
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	defer s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("notification service shutdown timeout")
		return ctx.Err()
	}
}
