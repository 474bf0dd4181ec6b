// package auth drives the authorization-code handshake for one service
//
// A handshake is Begin (pure URL construction), AwaitRedirect (one-shot listener), then Exchange.
// Authorize runs all three and opens the browser in between.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/server"
	"github.com/desertthunder/lsx/internal/services"
	"github.com/desertthunder/lsx/internal/shared"
)

// Authorization is the output of [Flow.Begin].
type Authorization struct {
	URL      string
	Verifier string // empty for services without PKCE
}

// Flow authorizes against one service.
type Flow struct {
	service  services.Service
	addr     string
	path     string
	timeout  time.Duration
	logger   *log.Logger
	out      io.Writer
	open     func(string) error
	verifier func() string
	bound    net.Addr
}

// NewFlow creates a flow whose listener binds addr and accepts the path of redirectURI.
func NewFlow(svc services.Service, addr, redirectURI string, timeout time.Duration, logger *log.Logger, out io.Writer) (*Flow, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: redirect_uri %q: %v", shared.ErrInvalidConfig, redirectURI, err)
	}
	path := u.Path
	if path == "" {
		path = "/" + string(svc.Name())
	}

	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	if out == nil {
		out = io.Discard
	}

	return &Flow{
		service:  svc,
		addr:     addr,
		path:     path,
		timeout:  timeout,
		logger:   logger,
		out:      out,
		open:     shared.OpenBrowser,
		verifier: oauth2.GenerateVerifier,
	}, nil
}

// WithBrowser replaces the browser opener. A nil opener only prints the URL.
func (f *Flow) WithBrowser(open func(string) error) *Flow {
	f.open = open
	return f
}

// Path is the callback path the listener accepts.
func (f *Flow) Path() string { return f.path }

// Begin builds the authorization URL. For PKCE services it generates a fresh verifier, 43
// characters of the unreserved alphabet, used directly as the plain challenge.
func (f *Flow) Begin() Authorization {
	var a Authorization
	if f.service.UsesPKCE() {
		a.Verifier = f.verifier()
	}
	a.URL = f.service.AuthURL(a.Verifier)
	return a
}

// AwaitRedirect binds the listener, calls ready once it is accepting, and blocks until exactly one
// redirect arrives on the callback path. The listener is released on every exit path.
func (f *Flow) AwaitRedirect(ctx context.Context, ready func(net.Addr) error) (string, error) {
	result, err := server.AwaitRedirect(ctx, f.addr, f.timeout, f.logger, ready, f.path)
	if errors.Is(err, server.ErrTimeout) {
		return "", &models.RedirectTimeoutError{Service: f.service.Name(), After: f.timeout}
	}
	if err != nil {
		return "", err
	}
	return result.Code, nil
}

// Exchange trades the code for a session.
func (f *Flow) Exchange(ctx context.Context, code, verifier string) (*models.Session, error) {
	return f.service.Exchange(ctx, code, verifier)
}

// Authorize runs the whole handshake: Begin, open the browser once the listener is bound,
// AwaitRedirect, Exchange.
func (f *Flow) Authorize(ctx context.Context) (*models.Session, error) {
	name := f.service.Name()
	a := f.Begin()

	code, err := f.AwaitRedirect(ctx, func(addr net.Addr) error {
		f.bound = addr
		f.logger.Info("waiting for redirect", "service", name, "addr", addr.String(), "path", f.path, "timeout", f.timeout)
		fmt.Fprintf(f.out, "→ Opening browser for %s authorization...\n", name.Display())
		if f.open == nil || f.open(a.URL) != nil {
			fmt.Fprintf(f.out, "Open this URL in your browser:\n%s\n\n", a.URL)
		}
		fmt.Fprintf(f.out, "→ Waiting for authorization (%s timeout)...\n", f.timeout)
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug("received authorization code", "service", name)
	session, err := f.Exchange(ctx, code, a.Verifier)
	if err != nil {
		return nil, err
	}
	f.logger.Info("authorized", "service", name, "user", session.UserName)
	return session, nil
}
