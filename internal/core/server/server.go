package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"socialdesk/internal/core/config"
)

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

func BuildServer(c config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           Addr(c.Host, c.Port),
		Handler:        handler,
		ReadTimeout:    seconds(c.ReadTimeoutSec, 5),
		WriteTimeout:   seconds(c.WriteTimeoutSec, 10),
		IdleTimeout:    seconds(c.IdleTimeoutSec, 60),
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

func seconds(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}

// Run serves until SIGINT/SIGTERM or a listen failure, then shuts down gracefully.
func Run(srv *http.Server, name string, l *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		l.Info(name+" starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s listen: %w", name, err)
		}
		return nil
	case sig := <-quit:
		l.Info(name+" shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s shutdown: %w", name, err)
	}
	l.Info(name + " stopped gracefully")
	return nil
}
