// Package config turns layered configuration sources into engine settings.
//
// Sources are applied in order over the built-in defaults:
//
//	defaults < files (TOML or YAML, in the order given) < MOTTO_ environment
//
// A Settings value is immutable once loaded; EngineOptions and Logger
// translate it into the options the engine and workspace accept.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/dshills/motto/internal/config/loader"
	"github.com/dshills/motto/internal/engine"
	"github.com/dshills/motto/internal/engine/buffer"
)

// Errors returned by configuration operations.
var (
	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates the value is outside its allowed range.
	ErrValidationFailed = errors.New("validation failed")
)

// Settings holds every configurable value.
type Settings struct {
	Editor  EditorSettings
	Logging LoggingSettings
}

// EditorSettings configures each engine.
type EditorSettings struct {
	TabWidth       int
	LineEnding     string // "lf" or "crlf"
	MaxUndoEntries int
	MaxChanges     int
	MaxRevisions   int
	ReadOnly       bool
}

// LoggingSettings configures the slog logger.
type LoggingSettings struct {
	Level  string // "debug", "info", "warn" or "error"
	Format string // "text" or "json"
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Editor: EditorSettings{
			TabWidth:       engine.DefaultTabWidth,
			LineEnding:     "lf",
			MaxUndoEntries: engine.DefaultMaxUndoEntries,
			MaxChanges:     engine.DefaultMaxChanges,
			MaxRevisions:   engine.DefaultMaxRevisions,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load merges sources over the defaults and validates the result.
// Sources that report nothing (a missing file) are skipped.
func Load(sources ...loader.Loader) (Settings, error) {
	merged := make(map[string]any)
	for _, src := range sources {
		data, err := src.Load()
		if err != nil {
			return Settings{}, fmt.Errorf("loading config: %w", err)
		}
		merged = loader.DeepMerge(merged, data)
	}

	s := Default()
	if err := s.apply(merged); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadFiles loads the given files (format by extension) followed by the
// MOTTO_ environment.
func LoadFiles(paths ...string) (Settings, error) {
	sources := make([]loader.Loader, 0, len(paths)+1)
	for _, p := range paths {
		l, err := loader.ForPath(p)
		if err != nil {
			return Settings{}, err
		}
		sources = append(sources, l)
	}
	sources = append(sources, loader.NewEnvLoader(loader.DefaultEnvPrefix))
	return Load(sources...)
}

// apply copies recognised keys from data into s.
func (s *Settings) apply(data map[string]any) error {
	ints := []struct {
		path string
		dst  *int
	}{
		{"editor.tabWidth", &s.Editor.TabWidth},
		{"editor.maxUndoEntries", &s.Editor.MaxUndoEntries},
		{"editor.maxChanges", &s.Editor.MaxChanges},
		{"editor.maxRevisions", &s.Editor.MaxRevisions},
	}
	for _, f := range ints {
		if v, ok := loader.Lookup(data, f.path); ok {
			n, err := toInt(v)
			if err != nil {
				return fmt.Errorf("%s: %w", f.path, err)
			}
			*f.dst = n
		}
	}

	strs := []struct {
		path string
		dst  *string
	}{
		{"editor.lineEnding", &s.Editor.LineEnding},
		{"logging.level", &s.Logging.Level},
		{"logging.format", &s.Logging.Format},
	}
	for _, f := range strs {
		if v, ok := loader.Lookup(data, f.path); ok {
			str, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s: got %T: %w", f.path, v, ErrTypeMismatch)
			}
			*f.dst = strings.ToLower(str)
		}
	}

	if v, ok := loader.Lookup(data, "editor.readOnly"); ok {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("editor.readOnly: got %T: %w", v, ErrTypeMismatch)
		}
		s.Editor.ReadOnly = b
	}

	return nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, fmt.Errorf("%d overflows int: %w", n, ErrValidationFailed)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number: %w", n, ErrTypeMismatch)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("got %T: %w", v, ErrTypeMismatch)
	}
}

// Validate reports the first out-of-range setting.
func (s Settings) Validate() error {
	switch {
	case s.Editor.TabWidth <= 0:
		return fmt.Errorf("editor.tabWidth %d: %w", s.Editor.TabWidth, ErrValidationFailed)
	case s.Editor.MaxUndoEntries <= 0:
		return fmt.Errorf("editor.maxUndoEntries %d: %w", s.Editor.MaxUndoEntries, ErrValidationFailed)
	case s.Editor.MaxChanges <= 0:
		return fmt.Errorf("editor.maxChanges %d: %w", s.Editor.MaxChanges, ErrValidationFailed)
	case s.Editor.MaxRevisions < 0:
		return fmt.Errorf("editor.maxRevisions %d: %w", s.Editor.MaxRevisions, ErrValidationFailed)
	}
	if _, err := parseLineEnding(s.Editor.LineEnding); err != nil {
		return err
	}
	if _, err := parseLevel(s.Logging.Level); err != nil {
		return err
	}
	if s.Logging.Format != "text" && s.Logging.Format != "json" {
		return fmt.Errorf("logging.format %q: %w", s.Logging.Format, ErrValidationFailed)
	}
	return nil
}

func parseLineEnding(s string) (buffer.LineEnding, error) {
	switch s {
	case "lf", "":
		return buffer.LineEndingLF, nil
	case "crlf":
		return buffer.LineEndingCRLF, nil
	default:
		return buffer.LineEndingLF, fmt.Errorf("editor.lineEnding %q: %w", s, ErrValidationFailed)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level %q: %w", s, ErrValidationFailed)
	}
	return level, nil
}

// Ending returns the parsed line ending, LF when the value is invalid.
func (e EditorSettings) Ending() buffer.LineEnding {
	ending, _ := parseLineEnding(e.LineEnding)
	return ending
}

// EngineOptions returns the engine options for these settings.
func (s Settings) EngineOptions() []engine.Option {
	opts := []engine.Option{
		engine.WithTabWidth(s.Editor.TabWidth),
		engine.WithLineEnding(s.Editor.Ending()),
		engine.WithMaxUndoEntries(s.Editor.MaxUndoEntries),
		engine.WithMaxChanges(s.Editor.MaxChanges),
		engine.WithMaxRevisions(s.Editor.MaxRevisions),
	}
	if s.Editor.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	return opts
}

// Logger builds a logger writing to w with the configured level and format.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(s.Logging.Level)
	hopts := &slog.HandlerOptions{Level: level}
	if s.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}
