package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/behrlich/burrow/internal/audit"
)

type chanRecorder struct {
	ch chan audit.Record
}

func (c *chanRecorder) Record(_ context.Context, rec audit.Record) {
	c.ch <- rec
}

// startWatcher spins up a watcher over a fresh root and returns the
// root plus the record stream. Skips the test if the platform refuses
// to hand out a watcher.
func startWatcher(t *testing.T) (string, chan audit.Record) {
	t.Helper()
	root := t.TempDir()
	rec := &chanRecorder{ch: make(chan audit.Record, 64)}

	w, err := New(root, "/memories", rec)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	t.Cleanup(func() { w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)

	return root, rec.ch
}

// waitFor drains records until one matches the predicate.
func waitFor(t *testing.T, ch chan audit.Record, what string, match func(audit.Record) bool) audit.Record {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case rec := <-ch:
			if match(rec) {
				return rec
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func TestWatcherReportsFileCreation(t *testing.T) {
	root, ch := startWatcher(t)

	if err := os.WriteFile(filepath.Join(root, "note.md"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := waitFor(t, ch, "create record", func(r audit.Record) bool {
		return r.Path == "/memories/note.md"
	})
	if rec.Op != "external" {
		t.Errorf("Op = %q, want external", rec.Op)
	}
	if !rec.OK {
		t.Error("external records should be marked ok")
	}
	if rec.Detail == "" {
		t.Error("Detail should carry the event kind")
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root, ch := startWatcher(t)

	sub := filepath.Join(root, "projects")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	// The directory's own create record confirms the new watch is in
	// place before we write into it.
	waitFor(t, ch, "directory record", func(r audit.Record) bool {
		return r.Path == "/memories/projects"
	})

	if err := os.WriteFile(filepath.Join(sub, "plan.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, ch, "nested file record", func(r audit.Record) bool {
		return r.Path == "/memories/projects/plan.md"
	})
}

func TestWatcherReportsRemoval(t *testing.T) {
	root, ch := startWatcher(t)

	path := filepath.Join(root, "gone.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, ch, "create record", func(r audit.Record) bool {
		return r.Path == "/memories/gone.txt"
	})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	rec := waitFor(t, ch, "remove record", func(r audit.Record) bool {
		return r.Path == "/memories/gone.txt" && r.Detail == "remove"
	})
	if rec.Op != "external" {
		t.Errorf("Op = %q, want external", rec.Op)
	}
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	rec := &chanRecorder{ch: make(chan audit.Record, 8)}
	w, err := New(root, "/memories", rec)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
