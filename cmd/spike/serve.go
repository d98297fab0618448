package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bjaus/dispatch/internal/config"
	"github.com/bjaus/dispatch/internal/logging"
)

type serveOptions struct {
	configPath string
	addr       string
	logLevel   string
	logFormat  string
}

func (o *serveOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.addr, "addr", "", "listen address (default :8888)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "", "log format: text, json")
}

func (o *serveOptions) overlay() *config.Config {
	return &config.Config{
		Addr: o.addr,
		Logging: logging.Config{
			Level:  logging.Level(o.logLevel),
			Format: logging.Format(o.logFormat),
		},
	}
}

func newServeCmd(opts *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}

func loadConfig(opts *serveOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Finalize(opts.overlay()); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, out io.Writer, opts *serveOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging, out)

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server", "addr", cfg.Addr)
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
