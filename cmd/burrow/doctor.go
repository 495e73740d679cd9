package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/behrlich/burrow/internal/config"
	"github.com/behrlich/burrow/internal/store"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, memory root, and audit sinks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("burrow doctor")
			fmt.Println()

			fmt.Println("Config:")
			path := configPath
			if path == "" {
				if p, err := config.DefaultPath(); err == nil {
					path = p
				}
			}
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("  %-11s %s\n", "file:", path)
			} else {
				fmt.Printf("  %-11s %s (not present, using defaults)\n", "file:", path)
			}
			fmt.Printf("  %-11s %s\n", "root:", cfg.Root)
			fmt.Printf("  %-11s %s\n", "prefix:", cfg.Prefix)
			fmt.Printf("  %-11s %s\n", "log level:", cfg.Logging.Level)
			fmt.Println()

			fmt.Println("Memory root:")
			if tmp, err := os.CreateTemp(cfg.Root, ".doctor-*"); err != nil {
				fmt.Printf("  %-11s not writable: %v\n", "access:", err)
			} else {
				tmp.Close()
				os.Remove(tmp.Name())
				fmt.Printf("  %-11s writable\n", "access:")
			}
			files, dirs := 0, 0
			err = filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
				if err != nil || p == cfg.Root {
					return err
				}
				if d.IsDir() {
					dirs++
				} else {
					files++
				}
				return nil
			})
			if err != nil {
				fmt.Printf("  %-11s walk failed: %v\n", "contents:", err)
			} else {
				fmt.Printf("  %-11s %d files, %d directories\n", "contents:", files, dirs)
			}
			fmt.Println()

			fmt.Println("Audit:")
			if cfg.Audit.DB == "" {
				fmt.Printf("  %-11s disabled\n", "db:")
			} else {
				st, err := store.Open(cfg.Audit.DB)
				if err != nil {
					fmt.Printf("  %-11s %s (open failed: %v)\n", "db:", cfg.Audit.DB, err)
				} else {
					n, err := st.CountRecords(context.Background())
					st.Close()
					if err != nil {
						fmt.Printf("  %-11s %s (count failed: %v)\n", "db:", cfg.Audit.DB, err)
					} else {
						fmt.Printf("  %-11s %s (%d records)\n", "db:", cfg.Audit.DB, n)
					}
				}
			}
			if cfg.Audit.Stderr {
				fmt.Printf("  %-11s on\n", "stderr:")
			} else {
				fmt.Printf("  %-11s off\n", "stderr:")
			}

			return nil
		},
	}
}
