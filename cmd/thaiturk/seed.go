package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antigravity-ventures/thaiturk/internal/cli"
	"github.com/antigravity-ventures/thaiturk/internal/common"
	"github.com/antigravity-ventures/thaiturk/internal/engine"
	"github.com/antigravity-ventures/thaiturk/internal/handler"
	"github.com/antigravity-ventures/thaiturk/internal/seed"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the launch partner hospital roster",
		Long: `Write the launch partner hospital roster into the database. Existing
hospitals are updated in place; seeding is idempotent. With --demo, also
run a set of demo patient intakes and travel bookings through the normal
pipeline.`,
		RunE: runSeed,
	}

	cmd.Flags().Bool("demo", false, "also register demo patients and travel requests")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	// Retried because a concurrent command may hold the single SQLite
	// connection past the busy timeout.
	err = common.WithRetry(ctx, func() error {
		return seed.Hospitals(ctx, store, seed.Options{ShowProgress: true})
	}, service.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return err
	}

	count := len(seed.PartnerHospitals())
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Seeded %d partner hospitals", count))) //nolint:forbidigo // User-facing output

	if demo, _ := cmd.Flags().GetBool("demo"); demo {
		return seedDemoData(cmd, store)
	}
	return nil
}

// seedDemoData registers the demo patients and travel requests through the
// sector handlers so the records carry real matches and commission snapshots.
func seedDemoData(cmd *cobra.Command, store service.Storage) error {
	ctx := cmd.Context()

	lex, err := initLexicon()
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}
	medical := handler.NewMedical(store, lex)
	travel := handler.NewTravel(store)

	for _, intake := range seed.DemoPatients() {
		resp, err := medical.ProcessIntake(ctx, intake)
		if err != nil {
			return fmt.Errorf("failed to register demo patient %s: %w", intake.FullName, err)
		}
		hospital := "TBD"
		if resp.MatchedHospital != nil {
			hospital = resp.MatchedHospital.Name
		}
		fmt.Println(cli.FormatInfo(fmt.Sprintf("%s → %s [%s]", intake.FullName, hospital, resp.PatientID))) //nolint:forbidigo // User-facing output
	}

	for _, booking := range seed.DemoTravelRequests() {
		req := engine.Request{
			Message:  "demo booking",
			Language: booking.Language,
			Metadata: map[string]any{
				"full_name": booking.FullName,
				"phone":     booking.Phone,
				"check_in":  booking.CheckIn,
				"room_type": booking.RoomType,
				"nights":    float64(booking.Nights),
				"guests":    float64(booking.Guests),
			},
		}
		resp, err := travel.Handle(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to register demo booking for %s: %w", booking.FullName, err)
		}
		fmt.Println(cli.FormatInfo(fmt.Sprintf("%s → %v nights from %s [%v]", //nolint:forbidigo // User-facing output
			booking.FullName, booking.Nights, booking.CheckIn, resp["request_id"])))
	}

	fmt.Println(cli.FormatSuccess("Demo data loaded")) //nolint:forbidigo // User-facing output
	return nil
}
