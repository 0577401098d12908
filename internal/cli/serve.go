package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cubefour/internal/arbiter"
	"github.com/roach88/cubefour/internal/httpapi"
	"github.com/roach88/cubefour/internal/match"
	"github.com/roach88/cubefour/internal/registry"
	"github.com/roach88/cubefour/internal/roster"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
	Mode     string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game API over HTTP",
		Long: `Start the HTTP API: games, human moves, module moves (algo-move) and
self-play steps (auto-step). Participant routes are enabled when a roster
database is configured.

Flags override the config file.

Examples:
  cubefour serve
  cubefour serve --addr 127.0.0.1:9000 --db roster.db --mode strict
  cubefour serve --config cubefour.cue --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, :8000)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "participant roster database")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "algo-move failure handling: permissive or strict")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := opts.logger(cmd.ErrOrStderr())

	if opts.Addr != "" {
		cfg.ServeAddr = opts.Addr
	}
	if opts.Database != "" {
		cfg.RosterDB = opts.Database
	}
	if opts.Mode != "" {
		if cfg.Mode, err = arbiter.ParseMode(opts.Mode); err != nil {
			return WrapExitError(ExitCommandError, "invalid --mode", err)
		}
	}

	var ros *roster.Roster
	if cfg.RosterDB != "" {
		ros, err = roster.Open(cfg.RosterDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open roster", err)
		}
		defer func() {
			if closeErr := ros.Close(); closeErr != nil {
				logger.Error("error closing roster", "error", closeErr)
			}
		}()
	}

	runner, err := newRunner(cfg, logger)
	if err != nil {
		return err
	}
	api := httpapi.New(
		registry.New(nil),
		arbiter.New(runner, arbiter.WithMode(cfg.Mode), arbiter.WithLogger(logger)),
		&match.Stepper{
			Arbiter: arbiter.New(runner, arbiter.WithMode(arbiter.ModeStrict), arbiter.WithLogger(logger)),
			Timeout: cfg.Timeout,
			Logger:  logger,
		},
		httpapi.WithRoster(ros),
		httpapi.WithTimeout(cfg.Timeout),
		httpapi.WithLogger(logger),
	)

	ln, err := net.Listen("tcp", cfg.ServeAddr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	server := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("server listening",
		"addr", ln.Addr().String(),
		"mode", cfg.Mode,
		"timeout", cfg.Timeout,
		"roster", cfg.RosterDB != "",
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", ln.Addr())

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", context.Cause(ctx))
	case err, ok := <-errCh:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown failed", "error", err)
		_ = server.Close()
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "server error", runErr)
	}
	return nil
}
