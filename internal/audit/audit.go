// Package audit defines the operation trail emitted by the memory
// interpreter. The interpreter reports through a Recorder instead of
// logging directly, so callers choose the sinks (stderr JSON lines,
// sqlite, both, none) and tests can capture records in memory.
package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Record describes one executed command, or one externally observed
// change under the memory root. Paths are always virtual; the real
// root never appears in a record.
type Record struct {
	ID           string    `json:"id,omitempty"`
	Time         time.Time `json:"time"`
	Session      string    `json:"session,omitempty"`
	Op           string    `json:"op"`
	Path         string    `json:"path,omitempty"`
	Dest         string    `json:"dest,omitempty"`
	OK           bool      `json:"ok"`
	ErrKind      string    `json:"err_kind,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	BytesRead    int64     `json:"bytes_read,omitempty"`
	BytesWritten int64     `json:"bytes_written,omitempty"`
}

// Recorder receives one record per operation. Recording is best-effort:
// implementations handle their own failures and must never block an
// operation from completing.
type Recorder interface {
	Record(ctx context.Context, rec Record)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, rec Record)

func (f RecorderFunc) Record(ctx context.Context, rec Record) { f(ctx, rec) }

// Fanout forwards each record to every given recorder, in order.
// Nil recorders are skipped.
func Fanout(recorders ...Recorder) Recorder {
	var rs []Recorder
	for _, r := range recorders {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return RecorderFunc(func(ctx context.Context, rec Record) {
		for _, r := range rs {
			r.Record(ctx, rec)
		}
	})
}

// WithSession stamps a session ID onto every record before forwarding.
func WithSession(r Recorder, session string) Recorder {
	return RecorderFunc(func(ctx context.Context, rec Record) {
		rec.Session = session
		r.Record(ctx, rec)
	})
}

// JSONRecorder writes one JSON object per line to w. Safe for
// concurrent use.
type JSONRecorder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONRecorder returns a line-oriented JSON sink. Pass stderr when
// stdout carries command results.
func NewJSONRecorder(w io.Writer) *JSONRecorder {
	return &JSONRecorder{enc: json.NewEncoder(w)}
}

func (r *JSONRecorder) Record(ctx context.Context, rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Encode failures are unactionable here; the sink stays best-effort.
	_ = r.enc.Encode(rec)
}
