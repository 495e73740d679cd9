package memory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// Kind labels an operation failure with a machine-distinguishable
// class. The values are stable: they appear in audit records and in
// serve-loop responses.
type Kind string

const (
	KindInvalidPath    Kind = "invalid_path"
	KindNotFound       Kind = "not_found"
	KindAlreadyExists  Kind = "already_exists"
	KindIsADirectory   Kind = "is_a_directory"
	KindNotADirectory  Kind = "not_a_directory"
	KindNoMatch        Kind = "no_match"
	KindAmbiguousMatch Kind = "ambiguous_match"
	KindLineOutOfRange Kind = "line_out_of_range"
	KindIO             Kind = "io_error"
)

// OpError is the typed failure every operation returns. Msg names the
// virtual path only; the real root must never appear in it, because
// these messages are relayed verbatim to the issuing agent.
type OpError struct {
	Kind Kind
	Path string
	Msg  string
}

func (e *OpError) Error() string { return e.Msg }

// KindOf extracts the failure kind from err, or "" when err is nil or
// carries no OpError.
func KindOf(err error) Kind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}

func opErrorf(kind Kind, path, format string, args ...any) *OpError {
	return &OpError{Kind: kind, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// ioError classifies an underlying filesystem error and rebuilds its
// message around the virtual path. os errors embed the real path, so
// the raw text must not pass through.
func ioError(virt string, err error) *OpError {
	kind := KindIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrExist):
		kind = KindAlreadyExists
	case errors.Is(err, syscall.EISDIR):
		kind = KindIsADirectory
	case errors.Is(err, syscall.ENOTDIR):
		kind = KindNotADirectory
	}

	reason := err.Error()
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	if errors.As(err, &pathErr) {
		reason = pathErr.Err.Error()
	} else if errors.As(err, &linkErr) {
		reason = linkErr.Err.Error()
	}

	return &OpError{Kind: kind, Path: virt, Msg: fmt.Sprintf("%s: %s", virt, reason)}
}
