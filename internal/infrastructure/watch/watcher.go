// Package watch re-runs work when a corpus file or directory changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultQuiet is how long the corpus must stay untouched before a batch of
// changes is delivered.
const DefaultQuiet = 300 * time.Millisecond

// Change is one filesystem event on a corpus document.
type Change struct {
	Path string
	Op   string // "create", "write", "remove" or "rename"
}

// CorpusWatcher watches a deck file, or every *.json document of a families
// directory. Editors that save by rename are handled by watching the parent
// directory rather than the file itself.
type CorpusWatcher struct {
	fs     *fsnotify.Watcher
	target string
	isDir  bool
	quiet  time.Duration
	logger *slog.Logger
}

func NewCorpusWatcher(target string, quiet time.Duration, logger *slog.Logger) (*CorpusWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", target, err)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	dir := target
	if !info.IsDir() {
		dir = filepath.Dir(target)
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &CorpusWatcher{
		fs:     fs,
		target: filepath.Clean(target),
		isDir:  info.IsDir(),
		quiet:  quiet,
		logger: logger,
	}, nil
}

// Run delivers batches of changes to onChange until ctx is cancelled. Calls
// to onChange never overlap.
func (w *CorpusWatcher) Run(ctx context.Context, onChange func(context.Context, []Change)) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.quiet)
	if !timer.Stop() {
		<-timer.C
	}
	var pending []Change

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			op := opName(event.Op)
			if op == "" || !w.relevant(event.Name) {
				continue
			}
			w.logger.Debug("corpus changed", "path", event.Name, "op", op)
			pending = append(pending, Change{Path: event.Name, Op: op})
			timer.Reset(w.quiet)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := slices.Clone(pending)
			pending = pending[:0]
			onChange(ctx, batch)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *CorpusWatcher) relevant(path string) bool {
	path = filepath.Clean(path)
	if !w.isDir {
		return path == w.target
	}
	base := filepath.Base(path)
	return filepath.Dir(path) == w.target &&
		!strings.HasPrefix(base, ".") &&
		strings.EqualFold(filepath.Ext(base), ".json")
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
