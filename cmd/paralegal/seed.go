package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/paralegal/internal/usecase/seed"
)

func newSeedCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the legal corpus into the document store",
		Long: `Embeds and stores the corpus documents. Without --force nothing is
written when the store already holds documents. With --force every document is
rewritten; documents are keyed by id so no duplicates are created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			var report seed.Report
			if force {
				report, err = a.seed.Seed(ctx)
			} else {
				report, err = a.seed.SeedIfEmpty(ctx)
			}
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "rewrite every document even when the store is not empty")
	return cmd
}

func printReport(cmd *cobra.Command, r seed.Report) {
	if r.Skipped {
		cmd.Printf("Store already seeded, nothing written (corpus: %d documents)\n", r.Total)
		return
	}
	cmd.Printf("Seeded %d of %d documents\n", r.Seeded, r.Total)
}
