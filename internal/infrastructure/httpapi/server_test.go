package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/reelai/internal/domain"
)

type fakeServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns int
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns++
	close(f.stop)
	return nil
}

func TestServerServiceShutdownOnCancel(t *testing.T) {
	server := newFakeServer(nil)
	svc := NewServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Equal(t, 1, server.shutdowns)
	assert.Equal(t, "http-server", svc.String())
}

func TestServerServiceListenFailure(t *testing.T) {
	svc := NewServerService(newFakeServer(errors.New("address in use")), 0)
	err := svc.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
}

func TestNewHTTPServerTimeouts(t *testing.T) {
	srv := NewHTTPServer(domain.ServerSettings{Addr: ":0"}, http.NotFoundHandler(), 30*time.Second)
	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 45*time.Second, srv.WriteTimeout)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)

	srv = NewHTTPServer(domain.ServerSettings{WriteTimeout: time.Minute}, http.NotFoundHandler(), 30*time.Second)
	assert.Equal(t, time.Minute, srv.WriteTimeout)
}
