package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/antigravity-ventures/thaiturk/internal/cli"
)

func hospitalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hospitals",
		Short: "Manage partner hospitals",
		Long:  `View the contracted partner hospital roster.`,
	}

	cmd.AddCommand(hospitalsListCmd())

	return cmd
}

func hospitalsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active partner hospitals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			hospitals, err := store.GetActiveHospitals(ctx)
			if err != nil {
				return fmt.Errorf("failed to list hospitals: %w", err)
			}
			if len(hospitals) == 0 {
				fmt.Println(cli.InfoStyle.Render("No hospitals found. Use 'thaiturk seed' to load the launch roster.")) //nolint:forbidigo // User-facing output
				return nil
			}

			fmt.Println(cli.FormatTitle(cli.HospitalIcon + " Partner hospitals")) //nolint:forbidigo // User-facing output

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() {
				if flushErr := w.Flush(); flushErr != nil {
					slog.Error("failed to flush table writer", "error", flushErr)
				}
			}()

			fmt.Fprintln(w, "ID\tName\tCity\tSpecialties\tLanguages\tRate\tRating")
			for i := range hospitals {
				h := &hospitals[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f%%\t%.1f\n",
					h.HospitalID, h.Name, h.City,
					strings.Join(h.Specialties, ","), strings.Join(h.Languages, ","),
					h.CommissionRate*100, h.Rating)
			}
			return nil
		},
	}
}
