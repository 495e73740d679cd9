package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJSONRecorderWritesOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONRecorder(&buf)

	r.Record(context.Background(), Record{Op: "create", Path: "/memories/a.txt", OK: true, Time: time.Now()})
	r.Record(context.Background(), Record{Op: "delete", Path: "/memories/a.txt", OK: false, ErrKind: "not_found"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var rec Record
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line 0 is not valid JSON: %v", err)
	}
	if rec.Op != "create" || rec.Path != "/memories/a.txt" || !rec.OK {
		t.Errorf("unexpected record: %+v", rec)
	}

	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("line 1 is not valid JSON: %v", err)
	}
	if rec.ErrKind != "not_found" {
		t.Errorf("err_kind = %q, want not_found", rec.ErrKind)
	}
}

func TestFanoutForwardsToAll(t *testing.T) {
	var a, b []Record
	r := Fanout(
		RecorderFunc(func(_ context.Context, rec Record) { a = append(a, rec) }),
		nil,
		RecorderFunc(func(_ context.Context, rec Record) { b = append(b, rec) }),
	)

	r.Record(context.Background(), Record{Op: "view"})

	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected both sinks to receive the record, got %d and %d", len(a), len(b))
	}
}

func TestWithSessionStampsRecords(t *testing.T) {
	var got []Record
	r := WithSession(RecorderFunc(func(_ context.Context, rec Record) { got = append(got, rec) }), "sess-1")

	r.Record(context.Background(), Record{Op: "insert", Session: ""})

	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Session != "sess-1" {
		t.Errorf("session = %q, want sess-1", got[0].Session)
	}
}
