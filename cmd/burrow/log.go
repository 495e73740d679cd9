package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/behrlich/burrow/internal/store"
)

func logCmd() *cobra.Command {
	var sessionFlag string
	var opFlag string
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent audit records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Audit.DB == "" {
				return fmt.Errorf("no audit database configured; set audit.db in the config file or BURROW_AUDIT_DB")
			}

			st, err := store.Open(cfg.Audit.DB)
			if err != nil {
				return fmt.Errorf("open audit db: %w", err)
			}
			defer st.Close()

			recs, err := st.ListRecords(context.Background(), store.ListOptions{
				Session: sessionFlag,
				Op:      opFlag,
				Limit:   limitFlag,
			})
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("no audit records")
				return nil
			}

			for _, r := range recs {
				status := "ok"
				if !r.OK {
					status = "err:" + r.ErrKind
				}
				fmt.Printf("%s  %-11s %-20s %s", r.Time.Local().Format("2006-01-02 15:04:05"), r.Op, status, r.Path)
				if r.Dest != "" {
					fmt.Printf(" -> %s", r.Dest)
				}
				if !r.OK && r.Detail != "" {
					fmt.Printf("  (%s)", r.Detail)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionFlag, "session", "", "only records from this session")
	cmd.Flags().StringVar(&opFlag, "op", "", "only records for this operation (view, create, ...)")
	cmd.Flags().IntVar(&limitFlag, "limit", 20, "maximum records to show")
	return cmd
}
