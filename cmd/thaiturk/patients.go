package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/antigravity-ventures/thaiturk/internal/cli"
	"github.com/antigravity-ventures/thaiturk/internal/model"
	"github.com/antigravity-ventures/thaiturk/internal/service"
)

func patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Manage registered patients",
		Long:  `List registered patients and move them through the referral pipeline.`,
	}

	cmd.AddCommand(patientsListCmd())
	cmd.AddCommand(patientsShowCmd())
	cmd.AddCommand(patientsStatusCmd())

	return cmd
}

func patientsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered patients",
		Long:  `List registered patients, newest first, optionally filtered by status.`,
		RunE:  runPatientsList,
	}

	cmd.Flags().String("status", "", "filter by status (inquiry, consultation_scheduled, ...)")
	cmd.Flags().Int("limit", 50, "maximum number of records")
	cmd.Flags().Int("offset", 0, "records to skip")

	return cmd
}

func runPatientsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	filter := service.PatientFilter{}
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	filter.Offset, _ = cmd.Flags().GetInt("offset")
	if raw, _ := cmd.Flags().GetString("status"); raw != "" {
		status := model.IntakeStatus(raw)
		if !status.IsValid() {
			return fmt.Errorf("unknown status %q", raw)
		}
		filter.Status = &status
	}

	patients, err := store.ListPatients(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list patients: %w", err)
	}
	if len(patients) == 0 {
		fmt.Println(cli.InfoStyle.Render("No patients found. Use 'thaiturk intake' to register one.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle(cli.HospitalIcon + " Patients")) //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	fmt.Fprintln(w, "ID\tName\tCategory\tHospital\tStatus\tCommission")
	for i := range patients {
		p := &patients[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t$%.2f\n",
			p.PatientID, p.Intake.FullName, p.ProcedureCategory,
			p.MatchedHospitalID, p.Status, p.CommissionUSD)
	}
	return nil
}

func patientsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <patient-id>",
		Short: "Show a patient record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			p, err := store.GetPatient(ctx, args[0])
			if err != nil {
				return err
			}

			details := fmt.Sprintf(
				"Name:       %s\nPhone:      %s\nLanguage:   %s\nProcedure:  %s\nCategory:   %s\nHospital:   %s\nStatus:     %s\nCost:       $%.2f\nCommission: $%.2f (rate %.2f)\nTags:       %s\nCreated:    %s",
				p.Intake.FullName, p.Intake.Phone, p.Intake.Language,
				p.Intake.ProcedureInterest, p.ProcedureCategory, p.MatchedHospitalID,
				p.Status, p.EstimatedProcedureCostUSD, p.CommissionUSD, p.CommissionRate,
				strings.Join(p.Tags, ", "), p.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Println(cli.RenderBox(p.PatientID, details)) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func patientsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <patient-id> <status>",
		Short: "Update a patient's pipeline status",
		Long: `Move a patient to a new pipeline status. Valid statuses: inquiry,
consultation_scheduled, docs_requested, hospital_matched,
treatment_confirmed, completed, cancelled.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			status := model.IntakeStatus(args[1])
			if !status.IsValid() {
				return fmt.Errorf("unknown status %q", args[1])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.UpdatePatientStatus(ctx, args[0], status); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Patient %s moved to %s", args[0], status))) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}
