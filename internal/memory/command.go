package memory

import (
	"encoding/json"
	"fmt"
)

// Command is one structured request against the memory tree, tagged by
// operation kind. The set is closed: Execute type-switches over exactly
// these six variants, so an unknown kind can only enter through
// ParseCommand, which rejects it.
type Command interface {
	// Name returns the wire tag for the operation ("view", "create", ...).
	Name() string
	isCommand()
}

// ViewCommand lists a directory or renders a file with numbered lines.
// ViewRange, when present, is a 1-based inclusive [start, end] pair.
type ViewCommand struct {
	Path      string `json:"path"`
	ViewRange []int  `json:"view_range,omitempty"`
}

// CreateCommand writes FileText to Path, replacing any existing file.
type CreateCommand struct {
	Path     string `json:"path"`
	FileText string `json:"file_text"`
}

// StrReplaceCommand substitutes OldStr with NewStr. OldStr must occur
// in the file exactly once.
type StrReplaceCommand struct {
	Path   string `json:"path"`
	OldStr string `json:"old_str"`
	NewStr string `json:"new_str"`
}

// InsertCommand splices NewStr in as new lines at the 0-based
// InsertLine. An index equal to the current line count appends.
type InsertCommand struct {
	Path       string `json:"path"`
	InsertLine int    `json:"insert_line"`
	NewStr     string `json:"new_str"`
}

// DeleteCommand removes a file or a directory tree.
type DeleteCommand struct {
	Path string `json:"path"`
}

// RenameCommand moves OldPath to NewPath, creating destination parents.
type RenameCommand struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

func (ViewCommand) Name() string       { return "view" }
func (CreateCommand) Name() string     { return "create" }
func (StrReplaceCommand) Name() string { return "str_replace" }
func (InsertCommand) Name() string     { return "insert" }
func (DeleteCommand) Name() string     { return "delete" }
func (RenameCommand) Name() string     { return "rename" }

func (ViewCommand) isCommand()       {}
func (CreateCommand) isCommand()     {}
func (StrReplaceCommand) isCommand() {}
func (InsertCommand) isCommand()     {}
func (DeleteCommand) isCommand()     {}
func (RenameCommand) isCommand()     {}

// ParseCommand decodes one JSON-encoded command. The "command" field
// selects the variant; unknown tags are rejected so a caller typo can
// never silently no-op.
func ParseCommand(data []byte) (Command, error) {
	var env struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}

	switch env.Command {
	case "view":
		var c ViewCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse view command: %w", err)
		}
		if n := len(c.ViewRange); n != 0 && n != 2 {
			return nil, fmt.Errorf("parse view command: view_range must be [start, end], got %d elements", n)
		}
		return c, nil
	case "create":
		var c CreateCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse create command: %w", err)
		}
		return c, nil
	case "str_replace":
		var c StrReplaceCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse str_replace command: %w", err)
		}
		return c, nil
	case "insert":
		var c InsertCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse insert command: %w", err)
		}
		return c, nil
	case "delete":
		var c DeleteCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse delete command: %w", err)
		}
		return c, nil
	case "rename":
		var c RenameCommand
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse rename command: %w", err)
		}
		return c, nil
	case "":
		return nil, fmt.Errorf(`parse command: missing "command" field`)
	default:
		return nil, fmt.Errorf("parse command: unsupported command %q", env.Command)
	}
}
