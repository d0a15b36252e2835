package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logdigest/pkg/config"
	"github.com/ccollicutt/logdigest/pkg/server"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	ConfigPath string
	Listen     string
	Top        int
	TempDir    string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Long: `Serve the analyzer over HTTP.

Endpoints:
  GET  /health    liveness check
  POST /analyze   analyze logs sent as multipart field "file",
                  a text/plain body, or JSON {"log": "..."};
                  ?top=N sets the ranked section size
  GET  /metrics   Prometheus metrics

Example:
  logdigest serve --listen :8000
  curl -F file=@app.log 'http://localhost:8000/analyze?top=10'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&opts.Listen, "listen", "l", config.DefaultListen, "Address to listen on")
	cmd.Flags().IntVar(&opts.Top, "top", config.DefaultTop, "Default number of entries in each ranked section")
	cmd.Flags().StringVar(&opts.TempDir, "temp-dir", "", "Directory for uploaded input (default: system temp dir)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := serveConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, logger).Start(ctx)
}

// serveConfig resolves the config file and applies explicitly set flags.
func serveConfig(ctx context.Context, cmd *cobra.Command, opts *ServeOptions) (*config.Config, error) {
	cfg, err := config.Resolve(ctx, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Server.Listen = opts.Listen
	}
	if flags.Changed("top") {
		cfg.Top = opts.Top
	}
	if flags.Changed("temp-dir") {
		cfg.Server.TempDir = opts.TempDir
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}
