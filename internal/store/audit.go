package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/behrlich/burrow/internal/audit"
)

// AppendRecord persists one audit record, assigning an ID and timestamp
// when the caller left them empty.
func (s *Store) AppendRecord(ctx context.Context, rec audit.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO audit_log
		(id, ts, session, op, path, dest, ok, err_kind, detail, bytes_read, bytes_written)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Time.UTC(), rec.Session, rec.Op, rec.Path, rec.Dest,
		rec.OK, rec.ErrKind, rec.Detail, rec.BytesRead, rec.BytesWritten)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// ListOptions narrows ListRecords output. Zero values mean no filter;
// a zero Limit falls back to 100.
type ListOptions struct {
	Session string
	Op      string
	Limit   int
}

// ListRecords returns audit records, newest first.
func (s *Store) ListRecords(ctx context.Context, opts ListOptions) ([]audit.Record, error) {
	q := `SELECT id, ts, session, op, path, dest, ok, err_kind, detail, bytes_read, bytes_written
		FROM audit_log`
	var where []string
	var args []any
	if opts.Session != "" {
		where = append(where, "session = ?")
		args = append(args, opts.Session)
	}
	if opts.Op != "" {
		where = append(where, "op = ?")
		args = append(args, opts.Op)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " ORDER BY ts DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var recs []audit.Record
	for rows.Next() {
		var rec audit.Record
		if err := rows.Scan(&rec.ID, &rec.Time, &rec.Session, &rec.Op, &rec.Path, &rec.Dest,
			&rec.OK, &rec.ErrKind, &rec.Detail, &rec.BytesRead, &rec.BytesWritten); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountRecords reports how many audit records the store holds.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit records: %w", err)
	}
	return n, nil
}

// Recorder adapts the store to audit.Recorder. Recording is
// best-effort by contract, so append failures are reported through
// logf (shaped like logger.Warn) instead of propagating.
func (s *Store) Recorder(logf func(msg string, args ...any)) audit.Recorder {
	return audit.RecorderFunc(func(ctx context.Context, rec audit.Record) {
		if err := s.AppendRecord(ctx, rec); err != nil && logf != nil {
			logf("audit append failed", "error", err)
		}
	})
}
