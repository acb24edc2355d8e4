package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antigravity-ventures/thaiturk/internal/handler"
)

func campaignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Marketing campaign operations",
	}

	cmd.AddCommand(campaignPlanCmd())

	return cmd
}

func campaignPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan an ad campaign budget",
		Long: `Allocate an ad budget across region/platform pairs weighted by inverse
cost-per-click: cheaper inventory gets more budget. The plan is printed as
JSON; nothing is persisted.`,
		RunE: runCampaignPlan,
	}

	cmd.Flags().String("procedure", "hair_transplant", "procedure to advertise")
	cmd.Flags().Float64("budget", 1000, "total budget in USD")
	cmd.Flags().Int("duration", 30, "campaign duration in days")
	cmd.Flags().StringSlice("regions", []string{"turkey"}, "target regions")
	cmd.Flags().StringSlice("platforms", []string{"google", "meta"}, "ad platforms")

	return cmd
}

func runCampaignPlan(cmd *cobra.Command, _ []string) error {
	lex, err := initLexicon()
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}

	procedure, _ := cmd.Flags().GetString("procedure")
	budget, _ := cmd.Flags().GetFloat64("budget")
	duration, _ := cmd.Flags().GetInt("duration")
	regions, _ := cmd.Flags().GetStringSlice("regions")
	platforms, _ := cmd.Flags().GetStringSlice("platforms")

	if budget <= 0 {
		return fmt.Errorf("budget must be positive, got %.2f", budget)
	}
	if len(regions) == 0 {
		return fmt.Errorf("at least one region is required")
	}

	marketing := handler.NewMarketing(lex)
	plan := marketing.BuildPlan(procedure, regions, platforms, budget, duration)

	out, err := json.MarshalIndent(plan.AsMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render plan: %w", err)
	}
	fmt.Println(string(out)) //nolint:forbidigo // User-facing output
	return nil
}
