package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antigravity-ventures/thaiturk/internal/cli"
)

func commissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commissions",
		Short: "Show the referral commission summary",
		Long: `Aggregate commission over the patient pipeline. Confirmed commission
covers treatment-confirmed and completed patients; pending commission covers
everything still moving through the pipeline.`,
		RunE: runCommissions,
	}
}

func runCommissions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	summary, err := store.GetCommissionSummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute commission summary: %w", err)
	}

	content := fmt.Sprintf(
		"Patients:  %d\nConfirmed: $%.2f\nPending:   $%.2f\nPipeline:  $%.2f",
		summary.TotalPatients,
		summary.ConfirmedCommissionUSD,
		summary.PendingCommissionUSD,
		summary.TotalPipelineUSD)
	fmt.Println(cli.RenderBox(cli.ChartIcon+" Commission summary", content)) //nolint:forbidigo // User-facing output
	return nil
}
