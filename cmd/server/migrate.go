package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations (sqlite) or ensure indexes (mongo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context(), cfg.Database, log)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
