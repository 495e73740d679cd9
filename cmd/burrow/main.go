package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/behrlich/burrow/internal/audit"
	"github.com/behrlich/burrow/internal/config"
	"github.com/behrlich/burrow/internal/logger"
	"github.com/behrlich/burrow/internal/memory"
	"github.com/behrlich/burrow/internal/store"
)

var (
	configPath string
	rootDir    string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:   "burrow",
		Short: "burrow — directory-backed agent memory",
		Long: "Executes memory commands (view, create, str_replace, insert, delete, rename)\n" +
			"against a real directory addressed through a virtual /memories namespace.\n" +
			"Commands cannot read or write anything outside the memory root.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.burrow/config.yaml)")
	root.PersistentFlags().StringVar(&rootDir, "root", "", "memory root directory (overrides config)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		viewCmd(),
		createCmd(),
		replaceCmd(),
		insertCmd(),
		deleteCmd(),
		renameCmd(),
		serveCmd(),
		logCmd(),
		watchCmd(),
		doctorCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers the global flags over the config file and brings
// the logger up.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if rootDir != "" {
		cfg.Root = rootDir
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRecorder assembles the configured audit sinks. The recorder is
// nil when no sink is enabled; cleanup is always safe to call.
func buildRecorder(cfg *config.Config) (audit.Recorder, func(), error) {
	var recorders []audit.Recorder
	cleanup := func() {}

	if cfg.Audit.DB != "" {
		st, err := store.Open(cfg.Audit.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("open audit db: %w", err)
		}
		cleanup = func() { st.Close() }
		recorders = append(recorders, st.Recorder(logger.Warn))
	}
	if cfg.Audit.Stderr {
		recorders = append(recorders, audit.NewJSONRecorder(os.Stderr))
	}

	if len(recorders) == 0 {
		return nil, cleanup, nil
	}
	return audit.Fanout(recorders...), cleanup, nil
}

// newTool builds the interpreter over the configured root.
func newTool(cfg *config.Config, rec audit.Recorder) (*memory.Tool, error) {
	opts := []memory.Option{memory.WithPrefix(cfg.Prefix)}
	if rec != nil {
		opts = append(opts, memory.WithRecorder(rec))
	}
	return memory.New(cfg.Root, opts...)
}
