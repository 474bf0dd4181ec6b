// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/lsx/internal/models"
)

// MockService is a scripted test double for services.Updater.
//
// FetchErrs is consumed one error per FetchList call before Lists is consulted, which lets a
// test return AuthExpired once and then succeed.
type MockService struct {
	ServiceName models.ServiceName
	PKCE        bool
	Lists       map[models.MediaKind]*models.ListModel
	FetchErrs   []error
	ApplyErrs   map[int]error
	Session     *models.Session

	mu        sync.Mutex
	fetches   int
	exchanges int
	applied   []models.ProposedAction
}

func (m *MockService) Name() models.ServiceName { return m.ServiceName }
func (m *MockService) UsesPKCE() bool           { return m.PKCE }

func (m *MockService) AuthURL(verifier string) string {
	return fmt.Sprintf("https://example.com/%s/authorize?challenge=%s", m.ServiceName, verifier)
}

func (m *MockService) Exchange(ctx context.Context, code, verifier string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchanges++
	if m.Session != nil {
		s := *m.Session
		s.Code, s.PKCE = code, verifier
		return &s, nil
	}
	return &models.Session{TokenType: "Bearer", AccessToken: "token-" + code, Code: code, PKCE: verifier}, nil
}

func (m *MockService) Refresh(ctx context.Context, session *models.Session) (*models.Session, error) {
	if session.RefreshToken == "" {
		return nil, errors.New("no refresh token")
	}
	s := *session
	s.AccessToken = "refreshed-" + session.AccessToken
	return &s, nil
}

func (m *MockService) FetchList(ctx context.Context, session *models.Session, kind models.MediaKind) (*models.ListModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if len(m.FetchErrs) > 0 {
		err := m.FetchErrs[0]
		m.FetchErrs = m.FetchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if l, ok := m.Lists[kind]; ok {
		return l, nil
	}
	return models.NewListModel(m.ServiceName, kind), nil
}

func (m *MockService) Apply(ctx context.Context, session *models.Session, action models.ProposedAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.ApplyErrs[action.ID]; ok {
		return err
	}
	m.applied = append(m.applied, action)
	return nil
}

// Applied returns the actions written so far.
func (m *MockService) Applied() []models.ProposedAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ProposedAction(nil), m.applied...)
}

// Fetches returns the number of FetchList calls.
func (m *MockService) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// Exchanges returns the number of Exchange calls.
func (m *MockService) Exchanges() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchanges
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// ListOf builds a model from entries, adding each under its own status.
func ListOf(service models.ServiceName, kind models.MediaKind, entries ...models.Entry) *models.ListModel {
	m := models.NewListModel(service, kind)
	for _, e := range entries {
		m.Add(e)
	}
	return m
}
