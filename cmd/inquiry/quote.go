package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/quote"
)

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote EVENT_FILE",
		Short: "Price a stored parsed event to stdout",
		Long: `Run the deterministic quote calculator over one stored parsed-event JSON
file and print the resulting quote. The calculation is pure: re-running it on
the same event always prints the same quote.`,
		Args: cobra.ExactArgs(1),
		RunE: runQuote,
	}
}

func runQuote(_ *cobra.Command, args []string) error {
	catalog, rules, err := loadReferenceData()
	if err != nil {
		return err
	}

	calculator, err := quote.NewCalculator(catalog, rules)
	if err != nil {
		return fmt.Errorf("failed to initialize quote calculator: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var event model.ParsedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to parse event %s: %w", args[0], err)
	}

	q := calculator.Generate(event)

	out, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
