package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/abrank/internal/shared"
)

// Serve runs the tracking server until ctx is cancelled, then drains
// in-flight requests before returning.
func Serve(ctx context.Context, conf shared.Config, router Router, logger *log.Logger) error {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	addr := fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tracking server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down tracking server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
