package server

import (
	"fmt"
	"html"
	"net/http"
	"slices"
	"sync"
)

// RedirectResult is what the single accepted redirect carried.
type RedirectResult struct {
	Path string
	Code string
	Err  error
}

// RedirectHandler accepts exactly one authorization redirect on its paths.
//
// The first request delivers a [RedirectResult]; every later request is refused with 410 Gone.
type RedirectHandler struct {
	paths  []string
	result chan RedirectResult
	once   sync.Once
}

// NewRedirectHandler creates a handler for the given callback paths.
func NewRedirectHandler(paths ...string) *RedirectHandler {
	return &RedirectHandler{
		paths:  slices.Clone(paths),
		result: make(chan RedirectResult, 1),
	}
}

// Routes returns the callback paths.
func (h *RedirectHandler) Routes() []string {
	return slices.Clone(h.paths)
}

// Result receives exactly one value, then is closed.
func (h *RedirectHandler) Result() <-chan RedirectResult {
	return h.result
}

func (h *RedirectHandler) send(r RedirectResult) bool {
	sent := false
	h.once.Do(func() {
		h.result <- r
		close(h.result)
		sent = true
	})
	return sent
}

// ServeHTTP extracts the code query parameter from the first redirect.
//
// A redirect without a code delivers the provider's error parameters instead.
func (h *RedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := RedirectResult{Path: r.URL.Path, Code: q.Get("code")}
	if result.Code == "" {
		result.Err = fmt.Errorf("authorization denied: %s %s", q.Get("error"), q.Get("error_description"))
		if q.Get("error") == "" {
			result.Err = fmt.Errorf("redirect to %s carried no code", r.URL.Path)
		}
	}

	if !h.send(result) {
		http.Error(w, "Redirect already processed", http.StatusGone)
		return
	}

	if result.Err != nil {
		writePage(w, http.StatusBadRequest, "Authorization Failed", html.EscapeString(result.Err.Error()))
		return
	}
	writePage(w, http.StatusOK, "Authorization Successful", "You can close this window and return to the terminal.")
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>%[1]s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #2e51a2; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%[1]s</h1>
        <p>%[2]s</p>
    </div>
</body>
</html>
`, title, message)
}
