// Package watcher reloads collections when files in a watched directory
// change.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event for a file
// before its handler runs.
const DefaultDebounce = 500 * time.Millisecond

// Event represents a settled change of one file.
type Event struct {
	Path      string
	Operation Operation
}

// Operation represents the type of file operation.
type Operation int

// File operation types.
const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Handler is called once per file after its events have settled.
type Handler func(ctx context.Context, event Event) error

// Config holds watcher configuration.
type Config struct {
	Paths     []string
	Debounce  time.Duration
	Recursive bool              // Also watch subdirectories, including new ones
	Filter    func(string) bool // Files to report; nil reports every file
}

// Watcher debounces fsnotify events per file and hands them to a Handler.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	logger    *slog.Logger
	cfg       Config

	mu      sync.Mutex
	pending map[string]*pending
	closed  bool
	wg      sync.WaitGroup
}

type pending struct {
	op    Operation
	timer *time.Timer
}

// New creates a new file watcher.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Filter == nil {
		cfg.Filter = func(string) bool { return true }
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		logger:    logger,
		cfg:       cfg,
		pending:   make(map[string]*pending),
	}, nil
}

// Start watches the configured paths and processes events until ctx is
// cancelled or Stop is called. Paths that cannot be watched are logged and
// skipped.
func (w *Watcher) Start(ctx context.Context) error {
	for _, p := range w.cfg.Paths {
		if err := w.AddPath(p); err != nil {
			w.logger.Warn("failed to watch path", "path", p, "error", err)
		}
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.eventLoop(ctx)
	}()
	return nil
}

// Stop stops the watcher and drops events that have not fired yet.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	w.closed = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

// AddPath watches path. With Recursive set its subdirectories are added
// as well.
func (w *Watcher) AddPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !w.cfg.Recursive {
		if err := w.fsWatcher.Add(absPath); err != nil {
			return err
		}
		w.logger.Info("watching directory", "path", absPath)
		return nil
	}
	return w.addTree(context.Background(), absPath, false)
}

// RemovePath stops watching path. Subdirectories stay watched.
func (w *Watcher) RemovePath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fsWatcher.Remove(absPath); err != nil {
		return err
	}
	w.logger.Info("removed watch path", "path", absPath)
	return nil
}

// addTree watches root and every directory below it. With announce set,
// files already present are reported as created; they may have been
// written before the watch was in place.
func (w *Watcher) addTree(ctx context.Context, root string, announce bool) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if announce && w.cfg.Filter(p) {
				w.schedule(ctx, p, OpCreate)
			}
			return nil
		}
		if err := w.fsWatcher.Add(p); err != nil {
			return err
		}
		w.logger.Info("watching directory", "path", p)
		return nil
	})
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(ctx, event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleFsEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	if w.cfg.Recursive && event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(ctx, event.Name, true); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !w.cfg.Filter(event.Name) {
		return
	}
	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
	w.schedule(ctx, event.Name, fsnotifyOpToOperation(event.Op))
}

// schedule records op for path and restarts its debounce timer.
func (w *Watcher) schedule(ctx context.Context, path string, op Operation) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if p, ok := w.pending[path]; ok {
		p.op = merge(p.op, op)
		p.timer.Reset(w.cfg.Debounce)
		return
	}
	w.pending[path] = &pending{
		op:    op,
		timer: time.AfterFunc(w.cfg.Debounce, func() { w.fire(ctx, path) }),
	}
}

func (w *Watcher) fire(ctx context.Context, path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.mu.Unlock()
	if !ok || ctx.Err() != nil {
		return
	}

	event := Event{Path: path, Operation: p.op}
	w.logger.Info("processing file event", "path", path, "operation", p.op.String())
	if err := w.handler(ctx, event); err != nil {
		w.logger.Error("handler error",
			"path", path,
			"operation", p.op.String(),
			"error", err,
		)
	}
}

// merge combines a pending operation with a newer one for the same file.
// A delete always wins. A file that was deleted and written again counts
// as modified, and a new file stays created however often it is written.
func merge(prev, next Operation) Operation {
	switch {
	case next == OpDelete:
		return OpDelete
	case prev == OpDelete:
		return OpModify
	case prev == OpCreate:
		return OpCreate
	default:
		return next
	}
}

// fsnotifyOpToOperation converts fsnotify.Op to our Operation type. A
// rename reports the old name, which is gone.
func fsnotifyOpToOperation(op fsnotify.Op) Operation {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return OpDelete
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		return OpModify
	}
}
