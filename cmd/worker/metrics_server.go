package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"feedsift/internal/observability/tracing"
	"feedsift/internal/usecase/notify"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ChannelHealthResponse is the body of GET /health/channels.
type ChannelHealthResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// channelHealthSource is satisfied by *notify.Service.
type channelHealthSource interface {
	GetChannelHealth() []notify.ChannelHealthStatus
}

// startMetricsServer serves /metrics and /health/channels on port until
// Shutdown is called on the returned server.
func startMetricsServer(ctx context.Context, logger *slog.Logger, port int, notifyService *notify.Service) *http.Server {
	var source channelHealthSource
	if notifyService != nil {
		source = notifyService
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      metricsMux(source),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	return server
}

func metricsMux(source channelHealthSource) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health/channels", channelHealthHandler(source))
	return tracing.Middleware(mux)
}

// channelHealthHandler answers 503 when any enabled channel has its
// circuit open. With notifications disabled the list is empty and healthy.
func channelHealthHandler(source channelHealthSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := ChannelHealthResponse{Healthy: true, Channels: []notify.ChannelHealthStatus{}}
		if source != nil {
			resp.Channels = append(resp.Channels, source.GetChannelHealth()...)
		}
		for _, ch := range resp.Channels {
			if ch.Enabled && ch.CircuitBreakerOpen {
				resp.Healthy = false
			}
		}

		status := http.StatusOK
		if !resp.Healthy {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
