package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/motto/internal/config/loader"
	"github.com/dshills/motto/internal/engine"
	"github.com/dshills/motto/internal/engine/buffer"
)

// mapLoader is a fixed in-memory source.
type mapLoader map[string]any

func (m mapLoader) Load() (map[string]any, error) { return m, nil }

type failLoader struct{}

func (failLoader) Load() (map[string]any, error) { return nil, errors.New("boom") }

func TestDefault(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	if s.Editor.TabWidth != engine.DefaultTabWidth {
		t.Errorf("TabWidth = %d, want %d", s.Editor.TabWidth, engine.DefaultTabWidth)
	}
	if s.Logging.Level != "info" || s.Logging.Format != "text" {
		t.Errorf("Logging = %+v", s.Logging)
	}
}

func TestLoadLayering(t *testing.T) {
	base := mapLoader{
		"editor":  map[string]any{"tabWidth": int64(2), "lineEnding": "CRLF"},
		"logging": map[string]any{"format": "json"},
	}
	override := mapLoader{
		"editor": map[string]any{"tabWidth": 8, "readOnly": true},
	}

	s, err := Load(base, override)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Editor.TabWidth != 8 {
		t.Errorf("TabWidth = %d, want 8", s.Editor.TabWidth)
	}
	if s.Editor.LineEnding != "crlf" {
		t.Errorf("LineEnding = %q, want crlf", s.Editor.LineEnding)
	}
	if !s.Editor.ReadOnly {
		t.Error("ReadOnly should be true")
	}
	if s.Logging.Format != "json" {
		t.Errorf("Format = %q, want json", s.Logging.Format)
	}
	if s.Editor.MaxUndoEntries != engine.DefaultMaxUndoEntries {
		t.Errorf("MaxUndoEntries = %d, want default", s.Editor.MaxUndoEntries)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  loader.Loader
		want error
	}{
		{"string tab width", mapLoader{"editor": map[string]any{"tabWidth": "wide"}}, ErrTypeMismatch},
		{"fractional tab width", mapLoader{"editor": map[string]any{"tabWidth": 2.5}}, ErrTypeMismatch},
		{"zero tab width", mapLoader{"editor": map[string]any{"tabWidth": 0}}, ErrValidationFailed},
		{"negative revisions", mapLoader{"editor": map[string]any{"maxRevisions": -1}}, ErrValidationFailed},
		{"bad line ending", mapLoader{"editor": map[string]any{"lineEnding": "nel"}}, ErrValidationFailed},
		{"cr line ending", mapLoader{"editor": map[string]any{"lineEnding": "cr"}}, ErrValidationFailed},
		{"bad level", mapLoader{"logging": map[string]any{"level": "loud"}}, ErrValidationFailed},
		{"bad format", mapLoader{"logging": map[string]any{"format": "xml"}}, ErrValidationFailed},
		{"read only not bool", mapLoader{"editor": map[string]any{"readOnly": "maybe"}}, ErrTypeMismatch},
		{"level not string", mapLoader{"logging": map[string]any{"level": 3}}, ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadSourceError(t *testing.T) {
	if _, err := Load(failLoader{}); err == nil {
		t.Fatal("expected source error")
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "motto.toml")
	yamlPath := filepath.Join(dir, "local.yaml")

	if err := os.WriteFile(tomlPath, []byte("[editor]\ntabWidth = 2\nmaxChanges = 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte("editor:\n  tabWidth: 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOTTO_LOG_LEVEL", "debug")

	s, err := LoadFiles(tomlPath, yamlPath, filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFiles failed: %v", err)
	}

	if s.Editor.TabWidth != 6 {
		t.Errorf("TabWidth = %d, want 6", s.Editor.TabWidth)
	}
	if s.Editor.MaxChanges != 20 {
		t.Errorf("MaxChanges = %d, want 20", s.Editor.MaxChanges)
	}
	if s.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", s.Logging.Level)
	}

	if _, err := LoadFiles(filepath.Join(dir, "motto.ini")); !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestEngineOptions(t *testing.T) {
	s := Default()
	s.Editor.TabWidth = 8
	s.Editor.LineEnding = "crlf"
	s.Editor.ReadOnly = true

	e := engine.New(s.EngineOptions()...)

	if e.TabWidth() != 8 {
		t.Errorf("TabWidth = %d, want 8", e.TabWidth())
	}
	if e.LineEnding() != buffer.LineEndingCRLF {
		t.Errorf("LineEnding = %v, want CRLF", e.LineEnding())
	}
	if !e.IsReadOnly() {
		t.Error("engine should be read-only")
	}
}

func TestLogger(t *testing.T) {
	var out bytes.Buffer

	s := Default()
	s.Logging.Format = "json"
	s.Logging.Level = "warn"
	log := s.Logger(&out)

	log.Info("hidden")
	log.Warn("shown", "key", "value")

	got := out.String()
	if strings.Contains(got, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(got, `"msg":"shown"`) {
		t.Errorf("expected JSON record, got %q", got)
	}

	out.Reset()
	s.Logging.Format = "text"
	s.Logger(&out).Warn("plain")
	if !strings.Contains(out.String(), "msg=plain") {
		t.Errorf("expected text record, got %q", out.String())
	}
}
