// Package watch reports external changes to the memory root.
//
// Mutations made through memory commands are audited as they execute,
// but anything else touching the backing directory (an editor, a sync
// job, another process) is invisible to the interpreter. Watcher fills
// that gap: it watches the real tree recursively with fsnotify and
// emits an audit record for every filesystem event, addressed by the
// same virtual paths commands use. Run it beside a tool only when the
// tool itself is idle, or expect its own writes to be echoed.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/behrlich/burrow/internal/audit"
	"github.com/behrlich/burrow/internal/logger"
)

// Watcher mirrors filesystem events under a memory root into audit
// records.
type Watcher struct {
	root   string
	prefix string
	rec    audit.Recorder
	fw     *fsnotify.Watcher
}

// New builds a watcher over root. The root should be the tool's
// resolved real directory so virtual paths line up exactly. Events are
// delivered to rec once Run is called.
func New(root, prefix string, rec audit.Recorder) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:   filepath.Clean(root),
		prefix: prefix,
		rec:    rec,
		fw:     fw,
	}
	if err := w.addTree(w.root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree registers watches for dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fw.Add(path)
		}
		return nil
	})
}

// Run delivers events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops the watcher. A running Run call returns once the event
// channel drains.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	// Permission-only churn is not worth an audit record.
	if ev.Op == fsnotify.Chmod {
		return
	}

	// Directories that appear after startup need their own watches. A
	// directory moved in wholesale may already have children, so walk
	// it rather than adding just the top.
	if ev.Has(fsnotify.Create) {
		if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				logger.Warn("watch new directory", "error", err)
			}
		}
	}

	w.rec.Record(ctx, audit.Record{
		Time:   time.Now().UTC(),
		Op:     "external",
		Path:   w.virtualize(ev.Name),
		OK:     true,
		Detail: strings.ToLower(ev.Op.String()),
	})
}

// virtualize maps a real path back into the command namespace.
func (w *Watcher) virtualize(real string) string {
	rel, err := filepath.Rel(w.root, real)
	if err != nil || rel == "." {
		return w.prefix
	}
	return w.prefix + "/" + filepath.ToSlash(rel)
}
