package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/behrlich/burrow/internal/audit"
	"github.com/behrlich/burrow/internal/logger"
	"github.com/behrlich/burrow/internal/memory"
	"github.com/behrlich/burrow/internal/watch"
)

// maxCommandBytes bounds a single JSON command line. file_text payloads
// dominate, so this is effectively the file size ceiling.
const maxCommandBytes = 16 * 1024 * 1024

// response is the per-line reply envelope. Output is a pointer so a
// successful empty result still serializes as {"output":""} rather
// than looking like an error.
type response struct {
	Output *string `json:"output,omitempty"`
	Error  string  `json:"error,omitempty"`
	Kind   string  `json:"kind,omitempty"`
}

func serveCmd() *cobra.Command {
	var watchFlag bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Execute JSON commands from stdin, one per line",
		Long: "Reads newline-delimited JSON commands from stdin and writes one JSON\n" +
			"response per line to stdout: {\"output\": ...} on success,\n" +
			"{\"error\": ..., \"kind\": ...} on failure. Malformed lines produce an\n" +
			"error response without stopping the loop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rec, cleanup, err := buildRecorder(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			session := uuid.NewString()
			if rec != nil {
				rec = audit.WithSession(rec, session)
			}

			tool, err := newTool(cfg, rec)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if watchFlag {
				if rec == nil {
					logger.Warn("--watch needs an audit sink; ignoring")
				} else {
					w, err := watch.New(tool.Root(), tool.Prefix(), rec)
					if err != nil {
						return fmt.Errorf("start watcher: %w", err)
					}
					defer w.Close()
					go w.Run(ctx)
				}
			}

			logger.Info("serving memory commands", "root", tool.Root(), "session", session)

			errCh := make(chan error, 1)
			go func() {
				errCh <- runServe(ctx, os.Stdin, os.Stdout, tool)
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				return nil
			case err := <-errCh:
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&watchFlag, "watch", false, "also report external changes to the audit trail")
	return cmd
}

// runServe drives the command loop until in is exhausted or ctx is
// cancelled. Every input line gets exactly one response line.
func runServe(ctx context.Context, in io.Reader, out io.Writer, tool *memory.Tool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCommandBytes)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var resp response
		if cmd, err := memory.ParseCommand(line); err != nil {
			resp = response{Error: err.Error(), Kind: "invalid_command"}
		} else if result, err := tool.Execute(ctx, cmd); err != nil {
			resp = response{Error: err.Error(), Kind: string(memory.KindOf(err))}
		} else {
			resp = response{Output: &result}
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}
