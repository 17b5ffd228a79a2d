package cmd

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ftmodel/internal/api"
	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/internal/lock"
	"github.com/Aman-CERP/ftmodel/internal/logging"
	"github.com/Aman-CERP/ftmodel/pkg/version"
)

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		addr    string
		lockDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve models over HTTP",
		Long: `Start the HTTP API for the declared models.

Routes:
  GET    /health
  GET    /models
  GET    /models/{model}/records?page=&per_page=&sort=field:dir&field=value
  POST   /models/{model}/records
  GET    /models/{model}/records/{id}
  PATCH  /models/{model}/records/{id}
  DELETE /models/{model}/records/{id}
  POST   /models/{model}/index
  GET    /metrics/queries
  GET    /metrics`,
		Example: `  # Listen on the configured address
  ftmodel serve

  # Override the address
  ftmodel serve --addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, addr, lockDir)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	cmd.Flags().StringVar(&lockDir, "lock-dir", lock.DefaultDir(), "Directory for per-index lock files")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, addr, lockDir string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.shutdown()

	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	logger := slog.Default()
	if !debugMode {
		logger = logging.New(cmd.ErrOrStderr(), a.cfg.Server.LogLevel)
	}

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithCollector(a.collector),
		api.WithRateLimit(a.cfg.Server.RateLimit, a.cfg.Server.Burst),
		api.WithLockDir(lockDir),
	}
	if a.metrics != nil {
		opts = append(opts, api.WithQueryMetrics(a.metrics))
	}
	srv := &http.Server{
		Handler:           api.NewServer(a.registry, a.exec, opts...).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.New(errors.ErrCodeNetworkUnavailable, "listen on "+addr, err).
			WithSuggestion("Pick a free address with --addr or server.addr")
	}
	logger.Info("server started",
		slog.String("addr", ln.Addr().String()),
		slog.String("version", version.Version),
		slog.Any("models", a.registry.Names()))
	cmd.Printf("Listening on http://%s\n", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New(errors.ErrCodeInternal, "graceful shutdown failed", err)
	}
	return nil
}
