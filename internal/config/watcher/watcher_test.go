package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/motto/internal/config"
	"github.com/dshills/motto/internal/engine"
	"github.com/dshills/motto/internal/workspace"
)

const waitFor = 3 * time.Second

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// collect returns a handler that forwards values without blocking.
func collect[T any](ch chan T) func(T) {
	return func(v T) {
		select {
		case ch <- v:
		default:
		}
	}
}

func TestNewRequiresPaths(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNoPaths) {
		t.Errorf("New(nil) error = %v, want ErrNoPaths", err)
	}
}

func TestNewMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "motto.toml")
	if _, err := New([]string{path}, nil); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestReloadAppliesToWorkspace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "motto.toml")
	writeFile(t, path, "[editor]\ntabWidth = 2\n")

	initial, err := config.LoadFiles(path)
	if err != nil {
		t.Fatal(err)
	}
	ws := workspace.New(workspace.WithEngineOptions(initial.EngineOptions()...))
	scratch, _ := ws.Get(ws.Scratch())
	if scratch.Engine.TabWidth() != 2 {
		t.Fatalf("initial TabWidth = %d, want 2", scratch.Engine.TabWidth())
	}

	changes := make(chan config.Settings, 8)
	w, err := New([]string{path}, func(s config.Settings) {
		ws.SetEditorDefaults(s.Editor.TabWidth, s.Editor.Ending())
		collect(changes)(s)
	}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writeFile(t, path, "[editor]\ntabWidth = 8\nlineEnding = \"crlf\"\n")

	// A truncate may be seen before the write; wait for the final content.
	deadline := time.After(waitFor)
	for reloaded := false; !reloaded; {
		select {
		case s := <-changes:
			reloaded = s.Editor.TabWidth == 8
		case <-deadline:
			t.Fatal("no reload after writing the config file")
		}
	}

	if got := scratch.Engine.TabWidth(); got != 8 {
		t.Errorf("scratch TabWidth = %d, want 8", got)
	}
	if got := scratch.Engine.LineEnding(); got != engine.LineEndingCRLF {
		t.Errorf("scratch LineEnding = %v, want CRLF", got)
	}

	doc, _ := ws.Get(ws.Open("later.txt", "x"))
	if doc.Engine.TabWidth() != 8 {
		t.Errorf("new document TabWidth = %d, want 8", doc.Engine.TabWidth())
	}
}

func TestReloadOnCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "motto.yaml")

	changes := make(chan config.Settings, 8)
	w, err := New([]string{path}, collect(changes), WithDebounce(0))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writeFile(t, path, "editor:\n  maxUndoEntries: 7\n")

	deadline := time.After(waitFor)
	for {
		select {
		case s := <-changes:
			if s.Editor.MaxUndoEntries == 7 {
				return
			}
		case <-deadline:
			t.Fatal("no reload after creating the config file")
		}
	}
}

func TestReloadErrorReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "motto.toml")
	writeFile(t, path, "[editor]\ntabWidth = 4\n")

	errs := make(chan error, 8)
	w, err := New([]string{path}, nil,
		WithDebounce(20*time.Millisecond),
		WithErrorHandler(collect(errs)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writeFile(t, path, "[editor]\ntabWidth = 0\n")

	select {
	case err := <-errs:
		if !errors.Is(err, config.ErrValidationFailed) {
			t.Errorf("reload error = %v, want ErrValidationFailed", err)
		}
	case <-time.After(waitFor):
		t.Fatal("no error after writing an invalid config file")
	}
}

func TestWithLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "motto.toml")
	writeFile(t, path, "")

	got := make(chan []string, 8)
	w, err := New([]string{path}, nil, WithDebounce(0), WithLoader(func(paths ...string) (config.Settings, error) {
		collect(got)(paths)
		return config.Default(), nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writeFile(t, path, "# touched\n")

	select {
	case paths := <-got:
		if len(paths) != 1 || paths[0] != w.Paths()[0] {
			t.Errorf("loader paths = %v, want %v", paths, w.Paths())
		}
	case <-time.After(waitFor):
		t.Fatal("loader not called")
	}
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "motto.toml")

	w, err := New([]string{path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"sibling file", fsnotify.Event{Name: filepath.Join(dir, "other.toml"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.ev); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestCloseTwice(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "motto.toml")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close() = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}
