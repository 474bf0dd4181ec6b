package shared

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/desertthunder/lsx/internal/models"
)

func TestSessionStore(t *testing.T) {
	newStore := func(t *testing.T) *SessionStore {
		return &SessionStore{Path: filepath.Join(t.TempDir(), "nested", "sessions.toml")}
	}

	t.Run("missing file loads empty", func(t *testing.T) {
		sessions, err := newStore(t).Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sessions.AniList != nil || sessions.MyAnimeList != nil {
			t.Error("expected no sessions")
		}
	})

	t.Run("save merges per service", func(t *testing.T) {
		store := newStore(t)

		al := &models.Session{TokenType: "Bearer", ExpiresIn: 31536000, AccessToken: "al-token", Code: "al-code", UserID: 5, UserName: "someone"}
		mal := &models.Session{TokenType: "Bearer", ExpiresIn: 2678400, AccessToken: "mal-token", RefreshToken: "mal-refresh", PKCE: "verifier"}

		if err := store.Save(models.AniList, al); err != nil {
			t.Fatalf("save anilist: %v", err)
		}
		if err := store.Save(models.MyAnimeList, mal); err != nil {
			t.Fatalf("save myanimelist: %v", err)
		}

		sessions, err := store.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if *sessions.AniList != *al {
			t.Errorf("anilist session = %+v, want %+v", sessions.AniList, al)
		}
		if *sessions.MyAnimeList != *mal {
			t.Errorf("myanimelist session = %+v, want %+v", sessions.MyAnimeList, mal)
		}

		if runtime.GOOS != "windows" {
			info, err := os.Stat(store.Path)
			if err != nil {
				t.Fatal(err)
			}
			if perm := info.Mode().Perm(); perm != 0o600 {
				t.Errorf("expected 0600, got %o", perm)
			}
		}
	})

	t.Run("session requires a token", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.Session(models.AniList); !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}

		if err := store.Save(models.AniList, &models.Session{AccessToken: "x"}); err != nil {
			t.Fatal(err)
		}
		s, err := store.Session(models.AniList)
		if err != nil || s.AccessToken != "x" {
			t.Errorf("got %+v, %v", s, err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		store := newStore(t)
		_ = store.Save(models.AniList, &models.Session{AccessToken: "a"})
		_ = store.Save(models.MyAnimeList, &models.Session{AccessToken: "m"})

		if err := store.Clear(models.AniList); err != nil {
			t.Fatal(err)
		}
		sessions, _ := store.Load()
		if sessions.AniList != nil || sessions.MyAnimeList == nil {
			t.Errorf("expected only myanimelist to remain: %+v", sessions)
		}

		if err := store.Clear(""); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(store.Path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected file removed, got %v", err)
		}
	})

	t.Run("unknown service", func(t *testing.T) {
		if err := newStore(t).Save("kitsu", &models.Session{}); !errors.Is(err, ErrSessionStore) {
			t.Errorf("expected ErrSessionStore, got %v", err)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		store := newStore(t)
		_ = os.MkdirAll(filepath.Dir(store.Path), 0o700)
		_ = os.WriteFile(store.Path, []byte("[anilist\n"), 0o600)
		if _, err := store.Load(); !errors.Is(err, ErrSessionStore) {
			t.Errorf("expected ErrSessionStore, got %v", err)
		}
	})
}
