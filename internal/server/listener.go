package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const shutdownTimeout = 5 * time.Second

// ErrTimeout is returned by [Listener.Await] when no redirect arrives in time.
var ErrTimeout = errors.New("timed out waiting for redirect")

// Listener is a short-lived HTTP server that receives one authorization redirect.
//
// The socket is bound by [Listen] before it returns, so the authorization URL can be opened
// immediately. [Listener.Close] releases it and is safe to call more than once.
type Listener struct {
	handler *RedirectHandler
	srv     *http.Server
	ln      net.Listener
	errs    chan error

	closeOnce sync.Once
	closeErr  error
}

// Listen binds addr and starts serving the redirect paths in the background.
func Listen(addr string, logger *log.Logger, paths ...string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind redirect listener on %s: %w", addr, err)
	}

	handler := NewRedirectHandler(paths...)
	router := NewBasicRouter()
	if logger != nil {
		router.Use(Logging(logger))
	}
	router.Handler(handler)

	l := &Listener{
		handler: handler,
		srv:     &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		ln:      ln,
		errs:    make(chan error, 1),
	}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.errs <- err
		}
	}()
	return l, nil
}

// Addr is the bound address. With port 0 it reports the chosen port.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Await blocks until the redirect arrives, the server fails, ctx is done, or timeout elapses.
// A non-positive timeout waits on ctx alone.
func (l *Listener) Await(ctx context.Context, timeout time.Duration) (RedirectResult, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case result := <-l.handler.Result():
		return result, result.Err
	case err := <-l.errs:
		return RedirectResult{}, fmt.Errorf("redirect listener failed: %w", err)
	case <-expired:
		return RedirectResult{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		return RedirectResult{}, ctx.Err()
	}
}

// Close stops the server, waiting briefly for the response to the redirect to flush.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := l.srv.Shutdown(ctx); err != nil {
			l.closeErr = l.srv.Close()
		}
	})
	return l.closeErr
}

// AwaitRedirect binds addr, calls ready with the bound address, waits for one redirect and
// always releases the listener before returning, including on cancellation.
func AwaitRedirect(ctx context.Context, addr string, timeout time.Duration, logger *log.Logger, ready func(net.Addr) error, paths ...string) (RedirectResult, error) {
	l, err := Listen(addr, logger, paths...)
	if err != nil {
		return RedirectResult{}, err
	}
	defer l.Close()

	if ready != nil {
		if err := ready(l.Addr()); err != nil {
			return RedirectResult{}, err
		}
	}
	return l.Await(ctx, timeout)
}
