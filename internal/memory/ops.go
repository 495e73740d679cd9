package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/behrlich/burrow/internal/audit"
)

// view renders a directory listing or a file with 1-based line numbers.
// It has no side effects.
func (t *Tool) view(c ViewCommand, rec *audit.Record) (string, error) {
	real, virt, err := t.resolve(c.Path)
	if err != nil {
		rec.Path = c.Path
		return "", err
	}
	rec.Path = virt

	if len(c.ViewRange) != 0 && len(c.ViewRange) != 2 {
		return "", opErrorf(KindLineOutOfRange, virt,
			"view range must be [start, end], got %d elements", len(c.ViewRange))
	}

	info, serr := os.Stat(real)
	if serr != nil {
		if os.IsNotExist(serr) {
			return "", opErrorf(KindNotFound, virt, "path does not exist: %s", virt)
		}
		return "", ioError(virt, serr)
	}

	if info.IsDir() {
		if len(c.ViewRange) > 0 {
			return "", opErrorf(KindIsADirectory, virt, "cannot apply a view range to a directory: %s", virt)
		}
		return t.listDir(real, virt, rec)
	}

	data, rerr := os.ReadFile(real)
	if rerr != nil {
		return "", ioError(virt, rerr)
	}
	rec.BytesRead = int64(len(data))

	lines := splitLines(string(data))
	start, end := 1, len(lines)
	if len(c.ViewRange) == 2 {
		start, end = c.ViewRange[0], c.ViewRange[1]
		if start < 1 || start > len(lines) || end < start {
			return "", opErrorf(KindLineOutOfRange, virt,
				"view range [%d, %d] is invalid: %s has %d lines", start, end, virt, len(lines))
		}
		if end > len(lines) {
			end = len(lines)
		}
	}

	var b strings.Builder
	for i := start; i <= end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\t%s", i, lines[i-1])
	}
	rec.Detail = fmt.Sprintf("read %d lines", end-start+1)
	return b.String(), nil
}

// listDir emits one "KIND: /virtual/path" row per immediate entry.
// os.ReadDir returns entries sorted by name, which keeps listings
// deterministic.
func (t *Tool) listDir(real, virt string, rec *audit.Record) (string, error) {
	entries, err := os.ReadDir(real)
	if err != nil {
		return "", ioError(virt, err)
	}
	rec.Detail = fmt.Sprintf("listed %d entries", len(entries))
	if len(entries) == 0 {
		return fmt.Sprintf("Directory is empty: %s", virt), nil
	}

	var b strings.Builder
	for i, e := range entries {
		kind := "FILE"
		if e.IsDir() {
			kind = "DIR"
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s/%s", kind, virt, e.Name())
	}
	return b.String(), nil
}

// create writes the full text to the target, replacing any existing
// file. Parent directories are created as needed.
func (t *Tool) create(c CreateCommand, rec *audit.Record) (string, error) {
	real, virt, err := t.resolve(c.Path)
	if err != nil {
		rec.Path = c.Path
		return "", err
	}
	rec.Path = virt

	if info, serr := os.Stat(real); serr == nil && info.IsDir() {
		return "", opErrorf(KindIsADirectory, virt, "path is a directory: %s", virt)
	}

	if err := os.MkdirAll(filepath.Dir(real), 0755); err != nil {
		return "", ioError(virt, err)
	}
	if err := os.WriteFile(real, []byte(c.FileText), 0644); err != nil {
		return "", ioError(virt, err)
	}

	rec.BytesWritten = int64(len(c.FileText))
	return fmt.Sprintf("Created file: %s", virt), nil
}

// strReplace substitutes old_str with new_str. The match must be
// unique: zero occurrences and multiple occurrences both fail, and in
// either case the file is left byte-for-byte unchanged.
func (t *Tool) strReplace(c StrReplaceCommand, rec *audit.Record) (string, error) {
	real, virt, err := t.resolve(c.Path)
	if err != nil {
		rec.Path = c.Path
		return "", err
	}
	rec.Path = virt

	info, serr := os.Stat(real)
	if serr != nil {
		if os.IsNotExist(serr) {
			return "", opErrorf(KindNotFound, virt, "file does not exist: %s", virt)
		}
		return "", ioError(virt, serr)
	}
	if info.IsDir() {
		return "", opErrorf(KindIsADirectory, virt, "path is a directory: %s", virt)
	}

	data, rerr := os.ReadFile(real)
	if rerr != nil {
		return "", ioError(virt, rerr)
	}
	content := string(data)
	rec.BytesRead = int64(len(data))

	switch n := strings.Count(content, c.OldStr); {
	case n == 0:
		return "", opErrorf(KindNoMatch, virt, "string not found in file: %s", c.OldStr)
	case n > 1:
		return "", opErrorf(KindAmbiguousMatch, virt,
			"string appears %d times in %s; it must appear exactly once", n, virt)
	}

	updated := strings.Replace(content, c.OldStr, c.NewStr, 1)
	if err := os.WriteFile(real, []byte(updated), 0644); err != nil {
		return "", ioError(virt, err)
	}
	rec.BytesWritten = int64(len(updated))
	return fmt.Sprintf("Replaced string in %s", virt), nil
}

// insert splices new lines in at a 0-based line index. Index 0 means
// before the first line; an index equal to the line count appends, and
// empty text inserts one blank line. The file's line-ending convention
// and trailing-newline state survive the rewrite; inserting non-empty
// text into an empty file at index 0 sets the content to exactly that
// text.
func (t *Tool) insert(c InsertCommand, rec *audit.Record) (string, error) {
	real, virt, err := t.resolve(c.Path)
	if err != nil {
		rec.Path = c.Path
		return "", err
	}
	rec.Path = virt

	info, serr := os.Stat(real)
	if serr != nil {
		if os.IsNotExist(serr) {
			return "", opErrorf(KindNotFound, virt, "file does not exist: %s", virt)
		}
		return "", ioError(virt, serr)
	}
	if info.IsDir() {
		return "", opErrorf(KindIsADirectory, virt, "path is a directory: %s", virt)
	}

	data, rerr := os.ReadFile(real)
	if rerr != nil {
		return "", ioError(virt, rerr)
	}
	content := string(data)
	rec.BytesRead = int64(len(data))

	lines := splitLines(content)
	if c.InsertLine < 0 || c.InsertLine > len(lines) {
		return "", opErrorf(KindLineOutOfRange, virt,
			"invalid line number: %d; %s has %d lines", c.InsertLine, virt, len(lines))
	}

	var updated string
	switch {
	case content == "" && c.NewStr == "":
		updated = "\n"
	case content == "":
		updated = c.NewStr
	default:
		eol := "\n"
		if strings.Contains(content, "\r\n") {
			eol = "\r\n"
		}
		trailing := strings.HasSuffix(content, "\n")

		// splitLines("") is zero lines; empty text counts as one
		// blank line.
		ins := splitLines(c.NewStr)
		if c.NewStr == "" {
			ins = []string{""}
		}

		spliced := make([]string, 0, len(lines)+len(ins))
		spliced = append(spliced, lines[:c.InsertLine]...)
		spliced = append(spliced, ins...)
		spliced = append(spliced, lines[c.InsertLine:]...)

		updated = strings.Join(spliced, eol)
		if trailing {
			updated += eol
		}
	}

	if err := os.WriteFile(real, []byte(updated), 0644); err != nil {
		return "", ioError(virt, err)
	}
	rec.BytesWritten = int64(len(updated))
	return fmt.Sprintf("Inserted text at line %d in %s", c.InsertLine, virt), nil
}

// delete removes a file, or a directory and everything beneath it.
// The memory root itself cannot be deleted.
func (t *Tool) delete(c DeleteCommand, rec *audit.Record) (string, error) {
	real, virt, err := t.resolve(c.Path)
	if err != nil {
		rec.Path = c.Path
		return "", err
	}
	rec.Path = virt

	if real == t.root {
		return "", opErrorf(KindInvalidPath, virt, "cannot delete the memory root: %s", virt)
	}

	info, serr := os.Lstat(real)
	if serr != nil {
		if os.IsNotExist(serr) {
			return "", opErrorf(KindNotFound, virt, "path does not exist: %s", virt)
		}
		return "", ioError(virt, serr)
	}

	if info.IsDir() {
		if err := os.RemoveAll(real); err != nil {
			return "", ioError(virt, err)
		}
		return fmt.Sprintf("Deleted directory: %s", virt), nil
	}
	if err := os.Remove(real); err != nil {
		return "", ioError(virt, err)
	}
	return fmt.Sprintf("Deleted file: %s", virt), nil
}

// rename moves a file or directory. Both paths are validated
// independently, destination parents are created, and an existing
// destination fails with already_exists: destructive overwrite has to
// be an explicit delete first.
func (t *Tool) rename(c RenameCommand, rec *audit.Record) (string, error) {
	oldReal, oldVirt, err := t.resolve(c.OldPath)
	if err != nil {
		rec.Path = c.OldPath
		return "", err
	}
	rec.Path = oldVirt

	newReal, newVirt, err := t.resolve(c.NewPath)
	if err != nil {
		rec.Dest = c.NewPath
		return "", err
	}
	rec.Dest = newVirt

	if oldReal == t.root || newReal == t.root {
		return "", opErrorf(KindInvalidPath, oldVirt, "cannot rename the memory root")
	}

	if _, serr := os.Lstat(oldReal); serr != nil {
		if os.IsNotExist(serr) {
			return "", opErrorf(KindNotFound, oldVirt, "source path does not exist: %s", oldVirt)
		}
		return "", ioError(oldVirt, serr)
	}
	if _, serr := os.Lstat(newReal); serr == nil {
		return "", opErrorf(KindAlreadyExists, newVirt, "destination already exists: %s", newVirt)
	} else if !os.IsNotExist(serr) {
		return "", ioError(newVirt, serr)
	}

	if err := os.MkdirAll(filepath.Dir(newReal), 0755); err != nil {
		return "", ioError(newVirt, err)
	}
	if err := os.Rename(oldReal, newReal); err != nil {
		return "", ioError(oldVirt, err)
	}
	return fmt.Sprintf("Renamed %s to %s", oldVirt, newVirt), nil
}

// splitLines breaks content into logical lines without their endings.
// A trailing newline does not produce a final empty line, so the count
// matches what a numbered view shows ("" has zero lines, "a\n" has
// one).
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
