package main

import (
	"log/slog"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/config"
)

// newServer wires the registry, dispatcher, and middleware chain
// described by cfg.
func newServer(cfg *config.Config, logger *slog.Logger) (*dispatch.Server, error) {
	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}

	d := dispatch.NewDispatcher(reg, dispatch.WithLogger(logger))
	srv := dispatch.NewServer(d, dispatch.WithShutdownTimeout(cfg.ShutdownTimeoutDuration()))

	// ETag wraps Compress so each content coding gets its own tag.
	srv.Use(
		dispatch.Recovery(),
		dispatch.RequestID(),
		dispatch.Logger(logger),
		dispatch.ETag(),
	)
	if cfg.RateLimit.Rate > 0 {
		srv.Use(dispatch.RateLimit(dispatch.RateLimitConfig{
			Rate:  cfg.RateLimit.Rate,
			Burst: cfg.RateLimit.Burst,
		}))
	}
	if cfg.Compress.Enabled {
		srv.Use(dispatch.Compress(dispatch.CompressConfig{MinSize: cfg.Compress.MinSize}))
	}
	return srv, nil
}
