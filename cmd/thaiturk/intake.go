package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/antigravity-ventures/thaiturk/internal/cli"
	"github.com/antigravity-ventures/thaiturk/internal/handler"
	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/notify"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

func intakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intake",
		Short: "Register a new patient inquiry",
		Long: `Register a patient inquiry end to end: procedure triage, partner
hospital matching, cost and commission estimation, and persistence. Prints
the coordinator message to forward to the patient.`,
		RunE: runIntake,
	}

	cmd.Flags().String("name", "", "patient full name (required)")
	cmd.Flags().String("phone", "", "patient phone number (required)")
	cmd.Flags().String("procedure", "", "procedure of interest, free text (required)")
	cmd.Flags().String("language", "ru", "patient language (tr, en, ru)")
	cmd.Flags().String("urgency", "routine", "urgency (routine, urgent, emergency)")
	cmd.Flags().Float64("budget", 0, "stated budget in USD (0 = not stated)")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("referral", "", "referral source")
	cmd.Flags().String("arrival", "", "planned arrival date (YYYY-MM-DD)")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("procedure")

	return cmd
}

func runIntake(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	lex, err := initLexicon()
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}
	medical := handler.NewMedical(store, lex)

	name, _ := cmd.Flags().GetString("name")
	phone, _ := cmd.Flags().GetString("phone")
	procedure, _ := cmd.Flags().GetString("procedure")
	language, _ := cmd.Flags().GetString("language")
	urgency, _ := cmd.Flags().GetString("urgency")
	budget, _ := cmd.Flags().GetFloat64("budget")
	notes, _ := cmd.Flags().GetString("notes")
	referral, _ := cmd.Flags().GetString("referral")
	arrival, _ := cmd.Flags().GetString("arrival")

	resp, err := medical.ProcessIntake(ctx, model.IntakeFields{
		FullName:          name,
		Phone:             phone,
		ProcedureInterest: procedure,
		Language:          language,
		Urgency:           urgency,
		BudgetUSD:         budget,
		Notes:             notes,
		ReferralSource:    referral,
		ArrivalDate:       arrival,
	})
	if err != nil {
		return fmt.Errorf("intake failed: %w", err)
	}

	// Forward the coordinator message to the patient. Delivery failures are
	// logged but never fail the intake; the record is already committed.
	var notifier service.Notifier = notify.NewLogNotifier(slog.Default())
	if sendErr := notifier.Send(ctx, "whatsapp", phone, resp.CoordinatorMessage); sendErr != nil {
		slog.Error("failed to send coordinator message", "patient_id", resp.PatientID, "error", sendErr)
	}

	hospital := "TBD"
	if resp.MatchedHospital != nil {
		hospital = fmt.Sprintf("%s (%s)", resp.MatchedHospital.Name, resp.MatchedHospital.City)
	}

	fmt.Println(cli.FormatSuccess("Patient registered: " + resp.PatientID))                            //nolint:forbidigo // User-facing output
	fmt.Println(cli.FormatInfo(fmt.Sprintf("Category: %s", resp.ProcedureCategory)))                   //nolint:forbidigo // User-facing output
	fmt.Println(cli.FormatInfo("Hospital: " + hospital))                                               //nolint:forbidigo // User-facing output
	fmt.Println(cli.FormatInfo(fmt.Sprintf("Estimated cost: $%.2f", resp.EstimatedProcedureCostUSD))) //nolint:forbidigo // User-facing output
	fmt.Println(cli.FormatInfo(fmt.Sprintf("Commission: $%.2f (%s)", resp.CommissionUSD, resp.CommissionRatePct))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                                                      //nolint:forbidigo // User-facing output
	fmt.Println(cli.RenderBox("Coordinator message", resp.CoordinatorMessage))                         //nolint:forbidigo // User-facing output
	fmt.Println()                                                                                      //nolint:forbidigo // User-facing output
	fmt.Println(cli.SubtleStyle.Render("Next steps:\n  - " + strings.Join(resp.NextSteps, "\n  - "))) //nolint:forbidigo // User-facing output
	return nil
}
