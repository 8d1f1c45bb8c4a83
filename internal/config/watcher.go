// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/shopdesk-tui/internal/logging"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a config file when it changes on disk.
//
// The parent directory is watched rather than the file itself, since most
// editors save by writing a temp file and renaming it over the original.
type Watcher struct {
	path     string
	debounce time.Duration
	log      logging.Logger
	onChange func(*Config)

	fsw       *fsnotify.Watcher
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher prepares a watcher for path. onChange receives every config
// that loads and validates; invalid edits are logged and skipped.
func NewWatcher(path string, debounce time.Duration, log logging.Logger, onChange func(*Config)) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("config watcher: empty path")
	}
	if onChange == nil {
		return nil, errors.New("config watcher: nil callback")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logging.Discard()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		log:      log.With("component", "config_watcher"),
		onChange: onChange,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
	return nil
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.done
		}
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "watch error", logging.Event("CONFIG_WATCH_ERROR", "error", err)...)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	cfg, _, err := Load(w.path)
	if err != nil {
		w.log.Warn(ctx, "config reload rejected", logging.Event("CONFIG_RELOAD_FAILED", "path", w.path, "error", err)...)
		return
	}
	w.log.Info(ctx, "config reloaded", logging.Event("CONFIG_RELOADED", "path", w.path)...)
	w.onChange(cfg)
}
