package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk and hands the new
// config to the registered callbacks. Callbacks run on the watcher's
// goroutine; a host that owns a Tracker must move the result onto its own
// goroutine before applying it.
type Watcher struct {
	path     string
	mu       sync.RWMutex
	config   *Config
	cbMu     sync.Mutex
	onChange []func(*Config)
	watcher  *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	errChan  chan error
}

// NewWatcher loads the config at path and starts watching it.
func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Editors often replace the file instead of writing it, so the
	// directory is watched rather than the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:    path,
		config:  cfg,
		watcher: fsw,
		ctx:     ctx,
		cancel:  cancel,
		errChan: make(chan error, 1),
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendErr(err)
		}
	}
}

func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		w.sendErr(fmt.Errorf("reload config: %w", err))
		return
	}

	w.mu.Lock()
	w.config = cfg
	w.mu.Unlock()
	logger.Debug("config reloaded", "path", w.path, "pairs", len(cfg.Pairs))

	w.cbMu.Lock()
	callbacks := append([]func(*Config){}, w.onChange...)
	w.cbMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (w *Watcher) sendErr(err error) {
	select {
	case w.errChan <- err:
	default:
		logger.Warn("dropped watcher error", "error", err)
	}
}

// OnChange registers a callback invoked with every successfully reloaded
// config.
func (w *Watcher) OnChange(cb func(*Config)) {
	w.cbMu.Lock()
	defer w.cbMu.Unlock()
	w.onChange = append(w.onChange, cb)
}

// Config returns the most recently loaded config.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Errors returns a channel receiving reload and watch errors. A failed
// reload keeps the previous config.
func (w *Watcher) Errors() <-chan error {
	return w.errChan
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}
