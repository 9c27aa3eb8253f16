// Package watcher reloads configuration when its files change.
//
// The watcher subscribes to the directories holding the config files, so
// editors that save by writing a temp file and renaming it over the
// original are still seen. Bursts of events are debounced into a single
// reload, which re-reads every file plus the environment and hands the
// validated Settings to the change handler.
package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/motto/internal/config"
)

// DefaultDebounce is the quiet period before a reload.
const DefaultDebounce = 100 * time.Millisecond

// ErrNoPaths is returned by New when there is nothing to watch.
var ErrNoPaths = errors.New("no config paths to watch")

// ChangeHandler receives freshly loaded settings.
type ChangeHandler func(config.Settings)

// ErrorHandler receives reload and watch errors.
type ErrorHandler func(error)

// LoadFunc loads settings from paths.
type LoadFunc func(paths ...string) (config.Settings, error)

// Watcher reloads settings when any watched config file changes.
type Watcher struct {
	fsw *fsnotify.Watcher

	paths []string
	files map[string]bool

	debounce time.Duration
	load     LoadFunc
	onChange ChangeHandler
	onError  ErrorHandler
	logger   *slog.Logger

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reload. Zero reloads on
// every relevant event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets a handler for failed reloads and watch errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Watcher) {
		w.onError = h
	}
}

// WithLoader replaces config.LoadFiles as the reload function.
func WithLoader(load LoadFunc) Option {
	return func(w *Watcher) {
		if load != nil {
			w.load = load
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New starts watching paths and calls onChange after each successful
// reload. Files need not exist yet, but their directories must.
func New(paths []string, onChange ChangeHandler, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	w := &Watcher{
		files:    make(map[string]bool, len(paths)),
		debounce: DefaultDebounce,
		load:     config.LoadFiles,
		onChange: onChange,
		logger:   slog.New(slog.DiscardHandler),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watching %s: %w", p, err)
		}
		w.paths = append(w.paths, abs)
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()

	w.logger.Debug("config watcher started", "paths", w.paths)
	return w, nil
}

// Paths returns the absolute paths being watched, in load order.
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("config file event", "path", ev.Name, "op", ev.Op.String())
			if w.debounce == 0 {
				w.reload()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.fail(fmt.Errorf("watching config: %w", err))

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

// relevant reports whether ev touches a watched file in a way that can
// change its content.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !w.files[filepath.Clean(ev.Name)] {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) ||
		ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	s, err := w.load(w.paths...)
	if err != nil {
		w.fail(fmt.Errorf("reloading config: %w", err))
		return
	}
	w.logger.Info("config reloaded", "paths", len(w.paths))
	if w.onChange != nil {
		w.onChange(s)
	}
}

// fail logs err and forwards it to the error handler. The previous
// settings stay in effect.
func (w *Watcher) fail(err error) {
	w.logger.Warn("config reload failed", "error", err)
	if w.onError != nil {
		w.onError(err)
	}
}
