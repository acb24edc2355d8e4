package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func routeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route <message>",
		Short: "Route a customer message to its business sector",
		Long: `Classify a free-text customer message, dispatch it to the matching
sector handler and print the combined response envelope as JSON.

Metadata fields (contact details, budget, language) can be attached with
repeated --meta key=value flags. A medical message with full_name and
phone metadata triggers a full patient intake.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRoute,
	}

	cmd.Flags().StringArray("meta", nil, "metadata as key=value (repeatable)")
	cmd.Flags().String("language", "", "caller language (tr, en, ru)")

	return cmd
}

func runRoute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	message := strings.Join(args, " ")

	metaPairs, _ := cmd.Flags().GetStringArray("meta")
	meta, err := parseMeta(metaPairs)
	if err != nil {
		return err
	}
	if lang, _ := cmd.Flags().GetString("language"); lang != "" {
		if meta == nil {
			meta = make(map[string]any)
		}
		meta["language"] = lang
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	dispatcher, _, err := initDispatcher(store)
	if err != nil {
		return err
	}

	var input any = message
	if meta != nil {
		meta["message"] = message
		input = meta
	}

	envelope := dispatcher.Route(ctx, input)
	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render envelope: %w", err)
	}
	fmt.Println(string(out)) //nolint:forbidigo // User-facing output
	return nil
}
