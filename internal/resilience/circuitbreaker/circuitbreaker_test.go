package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsift/internal/observability/metrics"
)

func testConfig(name string, timeout time.Duration) Config {
	return Config{
		Name:             name,
		MaxRequests:      2,
		Interval:         10 * time.Second,
		Timeout:          timeout,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func fail(cb *CircuitBreaker, n int, err error) {
	for i := 0; i < n; i++ {
		_, _ = Call(cb, func() (int, error) { return 0, err })
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig("cb-new", time.Second))

	require.NotNil(t, cb)
	assert.Equal(t, "cb-new", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("cb-new")))
}

func TestCall_ReturnsTypedResult(t *testing.T) {
	cb := New(testConfig("cb-typed", time.Second))

	got, err := Call(cb, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	boom := errors.New("boom")
	got, err = Call(cb, func() (string, error) { return "partial", boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, got)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCall_NilInterfaceResult(t *testing.T) {
	cb := New(testConfig("cb-nil", time.Second))

	got, err := Call(cb, func() (fmt.Stringer, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCall_OpensAndRejects(t *testing.T) {
	cb := New(testConfig("cb-open", time.Minute))
	rejected := metrics.CircuitBreakerRejectedTotal.WithLabelValues("cb-open")
	before := testutil.ToFloat64(rejected)

	fail(cb, 5, errors.New("boom"))
	require.True(t, cb.IsOpen())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("cb-open")))

	called := false
	_, err := Call(cb, func() (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.True(t, IsRejected(err))
	assert.False(t, called, "function must not run while open")
	assert.Equal(t, before+1, testutil.ToFloat64(rejected))
}

func TestCall_BelowMinRequestsStaysClosed(t *testing.T) {
	cb := New(testConfig("cb-min", time.Minute))

	fail(cb, 4, errors.New("boom"))

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCall_CancellationDoesNotTrip(t *testing.T) {
	cb := New(testConfig("cb-cancel", time.Minute))
	cancelled := fmt.Errorf("get feed: %w", context.Canceled)

	fail(cb, 10, cancelled)

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	_, err := Call(cb, func() (int, error) { return 0, cancelled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsRejected(err))
}

func TestCall_HalfOpenRecovers(t *testing.T) {
	cb := New(testConfig("cb-recover", 100*time.Millisecond))
	fail(cb, 6, errors.New("boom"))
	require.True(t, cb.IsOpen())

	time.Sleep(150 * time.Millisecond)

	_, err := Call(cb, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.NotEqual(t, gobreaker.StateOpen, cb.State())
}

func TestIsRejected(t *testing.T) {
	assert.True(t, IsRejected(gobreaker.ErrOpenState))
	assert.True(t, IsRejected(fmt.Errorf("detail page: %w", gobreaker.ErrTooManyRequests)))
	assert.False(t, IsRejected(errors.New("connection refused")))
	assert.False(t, IsRejected(nil))
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"oracle", OracleConfig("classifier"), "classifier"},
		{"feed fetch", FeedFetchConfig(), "feed-fetch"},
		{"detail page", DetailPageConfig(), "detail-page"},
		{"store", StoreConfig("sqlite"), "store-sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Name)
			assert.Positive(t, tt.cfg.MaxRequests)
			assert.Positive(t, tt.cfg.MinRequests)
			assert.Positive(t, tt.cfg.Timeout)
			assert.Greater(t, tt.cfg.FailureThreshold, 0.0)
			assert.LessOrEqual(t, tt.cfg.FailureThreshold, 1.0)
		})
	}
}
