// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package watch reloads shader source files on change.
//
// Editors rarely write files in place: most write a temporary file and
// rename it over the original, and many emit several events per save.
// The watcher therefore watches the file's directory rather than the
// file itself, and debounces event bursts before re-reading.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period required after the last event
// before the file is re-read.
const DefaultDebounce = 100 * time.Millisecond

// Watcher delivers the contents of one file whenever it changes.
type Watcher struct {
	fw   *fsnotify.Watcher
	path string

	debounce time.Duration
	sources  chan string
	errs     chan error

	done chan struct{}
	once sync.Once
}

// New watches path for changes. A non-positive debounce uses
// DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fw:       fw,
		path:     abs,
		debounce: debounce,
		sources:  make(chan string, 1),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Sources delivers the file's new contents after each settled change.
// Slow receivers only ever see the latest version: a pending delivery
// is replaced, never queued.
func (w *Watcher) Sources() <-chan string { return w.sources }

// Errors delivers watch and read failures.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.matches(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

// matches reports whether the event concerns the watched file.
func (w *Watcher) matches(ev fsnotify.Event) bool {
	if filepath.Base(ev.Name) != filepath.Base(w.path) {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.sendError(fmt.Errorf("reload %s: %w", w.path, err))
		return
	}
	// Replace any undelivered version with the latest.
	select {
	case <-w.sources:
	default:
	}
	select {
	case w.sources <- string(data):
	case <-w.done:
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errs <- err:
	case <-w.done:
	default:
	}
}
