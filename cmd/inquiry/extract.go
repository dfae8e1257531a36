package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/parser"
)

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract a single inquiry file to stdout",
		Long: `Parse one inquiry .txt file with the fuzzy extractor and print the
resulting parsed event as JSON. Useful for inspecting what the matcher sees
before running the full pipeline.`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}
}

func runExtract(_ *cobra.Command, args []string) error {
	catalog, _, err := loadReferenceData()
	if err != nil {
		return err
	}

	extractor, err := parser.NewExtractor(catalog)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	event := extractor.Parse(string(content))

	out, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
