package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antigravity-ventures/thaiturk/internal/handler"
)

func travelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "travel",
		Short: "Travel desk operations",
	}

	cmd.AddCommand(travelQuoteCmd())

	return cmd
}

func travelQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a hotel stay",
		Long: `Price a stay with seasonal rates (November through March runs at the
high-season multiplier). The quote is printed as JSON; nothing is persisted.`,
		RunE: runTravelQuote,
	}

	cmd.Flags().String("check-in", "", "check-in date (YYYY-MM-DD, default today)")
	cmd.Flags().Int("nights", 3, "number of nights")
	cmd.Flags().Int("guests", 2, "number of guests")
	cmd.Flags().String("room", "standard", "room type (standard, deluxe, suite, family)")

	return cmd
}

func runTravelQuote(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	checkIn, _ := cmd.Flags().GetString("check-in")
	nights, _ := cmd.Flags().GetInt("nights")
	guests, _ := cmd.Flags().GetInt("guests")
	room, _ := cmd.Flags().GetString("room")

	travel := handler.NewTravel(store)
	quote := travel.Quote(checkIn, nights, guests, room)

	out, err := json.MarshalIndent(quote.AsMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render quote: %w", err)
	}
	fmt.Println(string(out)) //nolint:forbidigo // User-facing output
	return nil
}
