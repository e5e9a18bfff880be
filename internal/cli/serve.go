package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/regtrain/internal/config"
	httpAdapter "github.com/aretw0/regtrain/pkg/adapters/http"
	"github.com/aretw0/regtrain/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// Serve exposes the tracking store over HTTP on ln until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config, ln net.Listener, out io.Writer, logger *slog.Logger) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close tracking store", "error", err)
		}
	}()

	srv := &http.Server{
		Handler: httpAdapter.NewHandler(store,
			httpAdapter.WithMetrics(metrics.NewRecorder()),
			httpAdapter.WithLogger(logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		fmt.Fprintf(out, "Serving runs from %s on %s\n", cfg.TrackingURI, ln.Addr())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			return srv.Close()
		}
		fmt.Fprintln(out, "Server stopped gracefully")
		return nil
	}
}
