package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/doeshing/reelai/internal/domain"
)

// NewHTTPServer builds a server from settings. Unset timeouts fall back to
// conservative values; the write timeout leaves room for a cold computation.
func NewHTTPServer(settings domain.ServerSettings, handler http.Handler, computeTimeout time.Duration) *http.Server {
	readTimeout := settings.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := settings.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = computeTimeout + 15*time.Second
	}
	return &http.Server{
		Addr:              settings.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// ServerService runs an HTTP server under a suture supervisor.
type ServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewServerService wraps server. A non-positive timeout uses 10s.
func NewServerService(server HTTPServer, shutdownTimeout time.Duration) *ServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = domain.DefaultShutdownTimeout
	}
	return &ServerService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve blocks until ctx is cancelled or the server fails. On cancellation
// it shuts down gracefully and returns ctx.Err().
func (s *ServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *ServerService) String() string { return "http-server" }
