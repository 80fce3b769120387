package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is how long the watcher waits for a burst of file events
// to settle before reporting it.
const DebounceInterval = 200 * time.Millisecond

// Change kinds reported by Watch.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Change is one file-level event after coalescing.
type Change struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// ChangeCallback receives every change from one debounce window, sorted by
// file name. It is called from the watcher goroutine.
type ChangeCallback func(changes []Change)

// Watch starts an fsnotify watcher on the content directory and reports
// note file changes until ctx is cancelled. eligible filters base names;
// nil accepts any ".md" file. Events within DebounceInterval of each other
// are coalesced into a single callback. A rename reports the old name as
// deleted; the new name arrives as its own create event.
func Watch(ctx context.Context, dir string, eligible func(name string) bool, logger *slog.Logger, cb ChangeCallback) error {
	if eligible == nil {
		eligible = func(name string) bool { return strings.HasSuffix(name, ".md") }
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", dir))

	pending := make(map[string]string)
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(DebounceInterval)
			timerCh = timer.C
		} else {
			timer.Reset(DebounceInterval)
		}
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		changes := make([]Change, 0, len(pending))
		for name, kind := range pending {
			changes = append(changes, Change{Kind: kind, Name: name})
		}
		sort.Slice(changes, func(i, j int) bool { return changes[i].Name < changes[j].Name })
		clear(pending)
		logger.Debug("watcher: flush", slog.Int("changes", len(changes)))
		if cb != nil {
			cb(changes)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !eligible(name) {
				continue
			}
			kind := classify(ev.Op)
			if kind == "" {
				continue
			}
			pending[name] = merge(pending[name], kind)
			logger.Debug("watcher: event", slog.String("file", name), slog.String("op", kind))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func classify(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return ChangeCreated
	case op&fsnotify.Write != 0:
		return ChangeUpdated
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return ChangeDeleted
	}
	return ""
}

// merge folds a new event into what is already pending for the same file
// within one window.
func merge(prev, next string) string {
	switch {
	case prev == "":
		return next
	case prev == ChangeCreated && next == ChangeUpdated:
		return ChangeCreated
	case prev == ChangeDeleted && next == ChangeCreated:
		return ChangeUpdated
	}
	return next
}
