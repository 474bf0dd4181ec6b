package shared

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "tilde prefix", in: "~/.config/lsx", want: filepath.Join(home, ".config/lsx")},
		{name: "bare tilde", in: "~", want: home},
		{name: "absolute", in: "/tmp/x", want: "/tmp/x"},
		{name: "tilde user form untouched", in: "~other/x", want: "~other/x"},
		{name: "memory database", in: ":memory:", want: ":memory:"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b || len(a) != 36 {
			t.Errorf("expected distinct uuids, got %q and %q", a, b)
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		data, err := MarshalJSON(map[string]int{"a": 1})
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "{\n  \"a\": 1\n}\n" {
			t.Errorf("unexpected json %q", data)
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "lsx.log")
		logger, closer, err := NewFileLogger(path)
		if err != nil {
			t.Fatal(err)
		}
		logger.Info("hello", "key", "value")
		closer.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "key=value") {
			t.Errorf("unexpected log output %q", data)
		}
	})
}

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() { getRuntime, startCommand = origRuntime, origStart })

	var started []string
	startCommand = func(cmd *exec.Cmd) error {
		started = cmd.Args
		return nil
	}

	for _, rt := range []string{"darwin", "linux", "windows"} {
		t.Run(rt, func(t *testing.T) {
			getRuntime = func() string { return rt }
			if err := OpenBrowser("http://example.com"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if started[len(started)-1] != "http://example.com" {
				t.Errorf("url not passed through: %v", started)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("http://example.com"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("start failure", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		startCommand = func(*exec.Cmd) error { return errors.New("no display") }
		if err := OpenBrowser("http://example.com"); err == nil {
			t.Error("expected error")
		}
	})
}
