package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/behrlich/burrow/internal/memory"
)

// runOne executes a single command against the configured tool and
// prints the result to stdout.
func runOne(c memory.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rec, cleanup, err := buildRecorder(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	tool, err := newTool(cfg, rec)
	if err != nil {
		return err
	}

	out, err := tool.Execute(context.Background(), c)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// readText returns the positional text argument at index i when
// present, otherwise all of stdin.
func readText(args []string, i int) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func viewCmd() *cobra.Command {
	var viewRange []int
	cmd := &cobra.Command{
		Use:   "view <path>",
		Short: "List a directory or show a file with numbered lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(memory.ViewCommand{Path: args[0], ViewRange: viewRange})
		},
	}
	cmd.Flags().IntSliceVar(&viewRange, "range", nil, "1-based inclusive line range, e.g. --range 3,7")
	return cmd
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <path> [text]",
		Short: "Write a file, replacing any existing content",
		Long:  "Writes the given text to the path, creating parent directories as needed.\nWith no text argument, content is read from stdin.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(args, 1)
			if err != nil {
				return err
			}
			return runOne(memory.CreateCommand{Path: args[0], FileText: text})
		},
	}
}

func replaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replace <path> <old-str> <new-str>",
		Short: "Replace a unique string in a file",
		Long:  "Replaces old-str with new-str. The match must be unique: zero or multiple\noccurrences fail and leave the file untouched.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(memory.StrReplaceCommand{Path: args[0], OldStr: args[1], NewStr: args[2]})
		},
	}
}

func insertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <path> <line> [text]",
		Short: "Insert text at a 0-based line index",
		Long:  "Splices text in before the given line; an index equal to the line count\nappends. With no text argument, content is read from stdin.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid line number %q", args[1])
			}
			text, err := readText(args, 2)
			if err != nil {
				return err
			}
			return runOne(memory.InsertCommand{Path: args[0], InsertLine: line, NewStr: text})
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a file or directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(memory.DeleteCommand{Path: args[0]})
		},
	}
}

func renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old-path> <new-path>",
		Short: "Move a file or directory",
		Long:  "Moves old-path to new-path, creating destination parents. Fails if the\ndestination already exists.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOne(memory.RenameCommand{OldPath: args[0], NewPath: args[1]})
		},
	}
}
