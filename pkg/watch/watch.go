// Package watch reloads the linkifier table when the definitions file
// changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/linkify/pkg/errors"
	"github.com/arthur-debert/linkify/pkg/logging"
	"github.com/arthur-debert/linkify/pkg/rules"
	"github.com/arthur-debert/linkify/pkg/table"
)

// Config configures a Watcher.
type Config struct {
	// Path is the definitions file to watch.
	Path string

	// Debounce is how long to wait for further writes before
	// reloading. Zero means 200ms.
	Debounce time.Duration
}

// Watcher keeps a table in sync with a definitions file.
type Watcher struct {
	config  Config
	table   *table.Table
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	pendingMu sync.Mutex
	pending   bool
}

func New(cfg Config, tbl *table.Table) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New(errors.ErrInvalidInput, "watch path is empty")
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = 200 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWatchSetup, "failed to create file watcher")
	}

	return &Watcher{
		config:  cfg,
		table:   tbl,
		watcher: fsw,
		logger:  logging.GetLogger("watch"),
	}, nil
}

// Reload reads the definitions file and rebuilds the table. A file
// that cannot be read or decoded leaves the current table in place;
// per-rule compile failures are the table's business.
func (w *Watcher) Reload() {
	defs, err := rules.Load(w.config.Path)
	if err != nil {
		w.logger.Warn().Err(err).
			Str("path", w.config.Path).
			Msg("Definitions unreadable, keeping previous table")
		return
	}

	w.table.Update(defs)
	w.logger.Info().
		Int("definitions", len(defs)).
		Str("path", w.config.Path).
		Msg("Reloaded definitions")
}

// Run loads the definitions once, then blocks, reloading the table on
// every change until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	// Watch the directory, not the file: editors typically replace the
	// file on save, which would orphan a direct watch after the first
	// write.
	dir := filepath.Dir(w.config.Path)
	if err := w.watcher.Add(dir); err != nil {
		return errors.Wrap(err, errors.ErrWatchSetup, "failed to watch directory").
			WithDetail("dir", dir)
	}
	defer func() { _ = w.watcher.Close() }()

	w.Reload()

	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	w.logger.Info().
		Str("path", w.config.Path).
		Dur("debounce", w.config.Debounce).
		Msg("Watching definitions")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case <-ticker.C:
			w.flush()
		}
	}
}

// handleEvent marks a reload pending when the definitions file itself
// changed. Writes arrive in bursts from most editors; the ticker in
// Run collapses them into one reload.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()

	w.logger.Debug().
		Str("op", event.Op.String()).
		Msg("Definitions file changed")
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	pending := w.pending
	w.pending = false
	w.pendingMu.Unlock()

	if pending {
		w.Reload()
	}
}
