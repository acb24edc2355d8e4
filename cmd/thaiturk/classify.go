package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/antigravity-ventures/thaiturk/internal/engine"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Classify a message without dispatching it",
		Long: `Run only the keyword classifier and print the sector decision,
confidence and matched keywords. Nothing is persisted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}
}

func runClassify(_ *cobra.Command, args []string) error {
	lex, err := initLexicon()
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}
	classifier, err := engine.NewClassifier(lex)
	if err != nil {
		return fmt.Errorf("failed to build classifier: %w", err)
	}

	result := classifier.Classify(strings.Join(args, " "))
	out, err := json.MarshalIndent(result.AsMap(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Println(string(out)) //nolint:forbidigo // User-facing output
	return nil
}
