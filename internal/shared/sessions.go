package shared

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/desertthunder/lsx/internal/models"
)

// Sessions is the persisted session document, one table per service.
type Sessions struct {
	AniList     *models.Session `toml:"anilist,omitempty"`
	MyAnimeList *models.Session `toml:"myanimelist,omitempty"`
}

// Get returns the session for service, or nil.
func (s *Sessions) Get(service models.ServiceName) *models.Session {
	switch service {
	case models.AniList:
		return s.AniList
	case models.MyAnimeList:
		return s.MyAnimeList
	}
	return nil
}

func (s *Sessions) set(service models.ServiceName, session *models.Session) error {
	switch service {
	case models.AniList:
		s.AniList = session
	case models.MyAnimeList:
		s.MyAnimeList = session
	default:
		return fmt.Errorf("%w: unknown service %q", ErrSessionStore, service)
	}
	return nil
}

// SessionStore persists authorized sessions at an explicit path.
type SessionStore struct {
	Path string
}

// NewSessionStore creates a store for path, expanding "~".
func NewSessionStore(path string) (*SessionStore, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return &SessionStore{Path: expanded}, nil
}

// Load reads every stored session. A missing file yields an empty document.
func (s *SessionStore) Load() (*Sessions, error) {
	var sessions Sessions
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return &sessions, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrSessionStore, s.Path, err)
	}
	if _, err := toml.Decode(string(data), &sessions); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrSessionStore, s.Path, err)
	}
	return &sessions, nil
}

// Session loads the stored session for one service, failing with [ErrNotAuthenticated] when absent.
func (s *SessionStore) Session(service models.ServiceName) (*models.Session, error) {
	sessions, err := s.Load()
	if err != nil {
		return nil, err
	}
	session := sessions.Get(service)
	if !session.Valid() {
		return nil, fmt.Errorf("%w: no %s session, run 'lsx auth %s'", ErrNotAuthenticated, service.Display(), service)
	}
	return session, nil
}

// Save merges session into the document and writes it with owner-only permissions.
func (s *SessionStore) Save(service models.ServiceName, session *models.Session) error {
	sessions, err := s.Load()
	if err != nil {
		return err
	}
	if err := sessions.set(service, session); err != nil {
		return err
	}
	return s.write(sessions)
}

// Clear removes one service's session, or every session when service is empty.
func (s *SessionStore) Clear(service models.ServiceName) error {
	if service == "" {
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrSessionStore, err)
		}
		return nil
	}

	sessions, err := s.Load()
	if err != nil {
		return err
	}
	if err := sessions.set(service, nil); err != nil {
		return err
	}
	return s.write(sessions)
}

func (s *SessionStore) write(sessions *Sessions) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrSessionStore, err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(sessions); err != nil {
		return fmt.Errorf("%w: failed to encode sessions: %v", ErrSessionStore, err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("%w: failed to write sessions: %v", ErrSessionStore, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: failed to replace sessions: %v", ErrSessionStore, err)
	}
	return nil
}
