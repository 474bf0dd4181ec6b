package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("outer"), mw("inner"))
		router.Handler(NewRedirectHandler("/x"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?code=abc", nil))
		if strings.Join(order, ",") != "outer,inner" {
			t.Errorf("unexpected order %v", order)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected redirect to be accepted, got %d", rec.Code)
		}
	})

	t.Run("Method Filter", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewRedirectHandler("/anilist"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/anilist?code=x", nil))
		if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodGet {
			t.Errorf("expected 405 with Allow header, got %d", rec.Code)
		}

		if routes := router.Routes(); len(routes) != 1 || routes[0] != "/anilist" {
			t.Errorf("unexpected routes %v", routes)
		}
	})

	t.Run("Logging Omits Query", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(Logging(logger))
		router.Handler(NewRedirectHandler("/myanimelist"))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/myanimelist?code=secret", nil))
		if out := buf.String(); !strings.Contains(out, "/myanimelist") || strings.Contains(out, "secret") {
			t.Errorf("unexpected log output %q", out)
		}
	})
}

func TestRedirectHandler(t *testing.T) {
	t.Run("First Redirect Wins", func(t *testing.T) {
		h := NewRedirectHandler("/anilist")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anilist?code=first", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		again := httptest.NewRecorder()
		h.ServeHTTP(again, httptest.NewRequest(http.MethodGet, "/anilist?code=second", nil))
		if again.Code != http.StatusGone {
			t.Errorf("expected 410 for replay, got %d", again.Code)
		}

		result, ok := <-h.Result()
		if !ok || result.Code != "first" || result.Path != "/anilist" || result.Err != nil {
			t.Errorf("unexpected result %+v", result)
		}
		if _, ok := <-h.Result(); ok {
			t.Error("result channel should be closed after one value")
		}
	})

	t.Run("Provider Error", func(t *testing.T) {
		h := NewRedirectHandler("/myanimelist")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/myanimelist?error=access_denied&error_description=user+said+no", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Err == nil || !strings.Contains(result.Err.Error(), "access_denied") {
			t.Errorf("expected provider error, got %+v", result)
		}
	})

	t.Run("Missing Code", func(t *testing.T) {
		h := NewRedirectHandler("/anilist")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anilist", nil))
		if result := <-h.Result(); result.Err == nil {
			t.Error("expected error for missing code")
		}
	})
}

// get is safe to call from a goroutine.
func get(t *testing.T, addr net.Addr, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://%s%s", addr, path))
	if err != nil {
		t.Errorf("request failed: %v", err)
		return &http.Response{}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp
}

func TestListener(t *testing.T) {
	t.Run("Receives One Redirect Then Releases", func(t *testing.T) {
		l, err := Listen("127.0.0.1:0", nil, "/anilist", "/myanimelist")
		if err != nil {
			t.Fatal(err)
		}
		addr := l.Addr()

		go get(t, addr, "/myanimelist?code=abc")

		result, err := l.Await(context.Background(), 5*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Code != "abc" || result.Path != "/myanimelist" {
			t.Errorf("unexpected result %+v", result)
		}

		if err := l.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
		if err := l.Close(); err != nil {
			t.Errorf("second close should be a no-op, got %v", err)
		}

		if _, err := net.DialTimeout("tcp", addr.String(), time.Second); err == nil {
			t.Error("listener should be released after Close")
		}
	})

	t.Run("Unknown Path Does Not Complete", func(t *testing.T) {
		l, err := Listen("127.0.0.1:0", nil, "/anilist")
		if err != nil {
			t.Fatal(err)
		}
		defer l.Close()

		if resp := get(t, l.Addr(), "/other?code=abc"); resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
		if _, err := l.Await(context.Background(), 50*time.Millisecond); !errors.Is(err, ErrTimeout) {
			t.Errorf("expected timeout, got %v", err)
		}
	})

	t.Run("Cancellation", func(t *testing.T) {
		l, err := Listen("127.0.0.1:0", nil, "/anilist")
		if err != nil {
			t.Fatal(err)
		}
		defer l.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := l.Await(ctx, 0); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Bind Failure", func(t *testing.T) {
		l, err := Listen("127.0.0.1:0", nil, "/anilist")
		if err != nil {
			t.Fatal(err)
		}
		defer l.Close()

		if _, err := Listen(l.Addr().String(), nil, "/anilist"); err == nil {
			t.Error("expected bind failure on a used port")
		}
	})
}

func TestAwaitRedirect(t *testing.T) {
	t.Run("Ready Callback Drives Redirect", func(t *testing.T) {
		var bound net.Addr
		result, err := AwaitRedirect(context.Background(), "127.0.0.1:0", 5*time.Second, nil, func(addr net.Addr) error {
			bound = addr
			go get(t, addr, "/anilist?code=xyz")
			return nil
		}, "/anilist")
		if err != nil {
			t.Fatal(err)
		}
		if result.Code != "xyz" {
			t.Errorf("unexpected result %+v", result)
		}
		if _, err := net.DialTimeout("tcp", bound.String(), time.Second); err == nil {
			t.Error("listener should be released on return")
		}
	})

	t.Run("Releases On Ready Failure", func(t *testing.T) {
		var bound net.Addr
		_, err := AwaitRedirect(context.Background(), "127.0.0.1:0", time.Second, nil, func(addr net.Addr) error {
			bound = addr
			return errors.New("no browser")
		}, "/anilist")
		if err == nil {
			t.Fatal("expected ready error")
		}
		if _, err := net.DialTimeout("tcp", bound.String(), time.Second); err == nil {
			t.Error("listener should be released on error")
		}
	})

	t.Run("Releases On Timeout", func(t *testing.T) {
		var bound net.Addr
		_, err := AwaitRedirect(context.Background(), "127.0.0.1:0", 20*time.Millisecond, nil, func(addr net.Addr) error {
			bound = addr
			return nil
		}, "/anilist")
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected timeout, got %v", err)
		}
		if _, err := net.DialTimeout("tcp", bound.String(), time.Second); err == nil {
			t.Error("listener should be released on timeout")
		}
	})
}
