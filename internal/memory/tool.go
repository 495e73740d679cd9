// Package memory implements the sandboxed virtual-filesystem
// interpreter behind the agent memory tool. Callers address paths under
// a virtual prefix (default "/memories"); the interpreter executes each
// command against a single real directory and guarantees no operation
// can reach outside it.
package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/behrlich/burrow/internal/audit"
)

// DefaultPrefix is the virtual path prefix commands address.
const DefaultPrefix = "/memories"

// Tool executes memory commands against the memory root. It holds no
// session state: every command re-resolves and re-validates its paths
// from scratch, so instances are safe to reuse across conversations.
type Tool struct {
	root   string // canonical absolute real path of the memory root
	prefix string // virtual prefix, e.g. "/memories"
	rec    audit.Recorder
}

// Option configures a Tool.
type Option func(*Tool)

// WithRecorder attaches an audit recorder; every Execute call emits
// exactly one record through it.
func WithRecorder(r audit.Recorder) Option {
	return func(t *Tool) { t.rec = r }
}

// WithPrefix overrides the default virtual prefix. The value is
// normalized to a single leading-slash segment ("memories" and
// "/memories/" both become "/memories").
func WithPrefix(prefix string) Option {
	return func(t *Tool) { t.prefix = "/" + strings.Trim(prefix, "/") }
}

// New returns a Tool rooted at dir, creating the directory if absent.
func New(dir string, opts ...Option) (*Tool, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve memory root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create memory root: %w", err)
	}
	// Canonicalize once so resolved paths compare stably even when the
	// root is reached through a symlink (macOS temp dirs, for one).
	if canon, err := filepath.EvalSymlinks(abs); err == nil {
		abs = canon
	}

	t := &Tool{root: abs, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Root returns the canonical real path of the memory root.
func (t *Tool) Root() string { return t.root }

// Prefix returns the virtual prefix commands must address.
func (t *Tool) Prefix() string { return t.prefix }

// Execute runs one command to completion and returns its formatted
// result. Failures come back as *OpError values and never name the
// real root. The interpreter does not retry; that is the caller's
// policy.
func (t *Tool) Execute(ctx context.Context, cmd Command) (string, error) {
	rec := audit.Record{Time: time.Now().UTC(), Op: cmd.Name()}

	out, err := t.run(cmd, &rec)

	rec.OK = err == nil
	if err != nil {
		rec.ErrKind = string(KindOf(err))
		rec.Detail = err.Error()
	} else if rec.Detail == "" {
		rec.Detail = out
	}
	if t.rec != nil {
		t.rec.Record(ctx, rec)
	}
	return out, err
}

func (t *Tool) run(cmd Command, rec *audit.Record) (string, error) {
	switch c := cmd.(type) {
	case ViewCommand:
		return t.view(c, rec)
	case CreateCommand:
		return t.create(c, rec)
	case StrReplaceCommand:
		return t.strReplace(c, rec)
	case InsertCommand:
		return t.insert(c, rec)
	case DeleteCommand:
		return t.delete(c, rec)
	case RenameCommand:
		return t.rename(c, rec)
	default:
		// Command is sealed; reaching this means a new variant was
		// added without a dispatch case.
		return "", opErrorf(KindInvalidPath, "", "unsupported command type %T", cmd)
	}
}
