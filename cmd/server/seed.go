package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"liftlog/workout-engine/internal/catalog"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the exercise catalog used by example workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		entries, err := catalog.Load(seedFile)
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context(), cfg.Database, log)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		n, err := catalog.Seed(cmd.Context(), store.Catalog(), entries)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d catalog exercises\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML catalog file (defaults to the built-in catalog)")
	rootCmd.AddCommand(seedCmd)
}
