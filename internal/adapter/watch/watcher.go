// Package watch reloads the dashboard when local data files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/park-visits-dashboard/internal/dashboard"
)

// Refresher reloads the dashboard data.
type Refresher interface {
	Refresh(ctx context.Context, trigger string) error
}

// Watcher watches the directories holding the data files and triggers one
// refresh per burst of changes.
type Watcher struct {
	fsw       *fsnotify.Watcher
	files     map[string]bool
	debounce  time.Duration
	clock     clockwork.Clock
	refresher Refresher
	logger    *slog.Logger
}

// New starts watching the parent directory of every path. Directories are
// watched rather than files so editors that replace a file by rename keep
// being observed.
func New(paths []string, debounce time.Duration, r Refresher, logger *slog.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no local data files to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fsw:       fsw,
		files:     make(map[string]bool, len(paths)),
		debounce:  debounce,
		clock:     clockwork.NewRealClock(),
		refresher: r,
		logger:    logger,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run handles file events until ctx is cancelled, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	d := newDebouncer(w.clock, w.debounce)
	defer d.close()

	w.logger.Info("watching data files", "files", len(w.files), "debounce", w.debounce)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("data file changed", "file", ev.Name, "op", ev.Op.String())
			d.trigger()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case gen := <-d.fire:
			if !d.due(gen) {
				continue
			}
			if err := w.refresher.Refresh(ctx, dashboard.TriggerWatch); err != nil {
				w.logger.Warn("reload after file change failed", "error", err)
			}
		}
	}
}

// debouncer collapses a burst of triggers into one fire. Every trigger
// starts a new timer generation; a fire from an older generation that was
// already in flight is ignored by due.
type debouncer struct {
	clock clockwork.Clock
	delay time.Duration
	fire  chan uint64
	stop  chan struct{}
	timer clockwork.Timer
	gen   uint64
}

func newDebouncer(clock clockwork.Clock, delay time.Duration) *debouncer {
	return &debouncer{
		clock: clock,
		delay: delay,
		fire:  make(chan uint64),
		stop:  make(chan struct{}),
	}
}

func (d *debouncer) trigger() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		select {
		case d.fire <- gen:
		case <-d.stop:
		}
	})
}

// due reports whether gen is the latest pending fire and clears it.
func (d *debouncer) due(gen uint64) bool {
	if d.timer == nil || gen != d.gen {
		return false
	}
	d.timer = nil
	return true
}

func (d *debouncer) close() {
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.stop)
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
