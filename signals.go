package osrv

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Run is a convenience wrapper around Serve/Close: it starts the Server,
// blocks until SIGINT or SIGTERM arrives, then closes gracefully with
// Config.GracefulShutdown.ForceTimeout as the outer deadline. Grounded on
// bolt/core/app.go's Run method (background Serve goroutine racing an
// os/signal channel, then a timeout-bounded Shutdown).
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		sig := <-sigCh
		s.config.Logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case sig := <-sigCh:
		s.config.Logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), s.config.GracefulShutdown.ForceTimeout)
	defer cancel()

	if err := s.Close(closeCtx, false); err != nil {
		s.config.Logger.Error("graceful close failed", zap.Error(err))
		return err
	}
	return nil
}
