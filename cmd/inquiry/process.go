// Package main contains the inquiry CLI commands.
package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/cli"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/common"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/config"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/llm"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/parser"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/pipeline"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/quote"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/timeline"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process the inquiry inbox end to end",
		Long: `Run the full workflow over every inquiry in the inbox: extract purchase
intents, draft acknowledgments, and generate quotes.

Each stage is idempotent: inquiries whose output artifact already exists are
skipped, so interrupted runs can simply be re-run.

Examples:
  inquiry process                      # fuzzy extraction (offline)
  inquiry process --engine llm         # delegate extraction to an LLM
  inquiry process --inbox samples/inbox --data data`,
		RunE: runProcess,
	}

	// Flags
	cmd.Flags().String("engine", "fuzzy", "extraction engine (fuzzy, llm)")
	cmd.Flags().String("inbox", "samples/inbox", "directory of inquiry .txt files")
	cmd.Flags().String("data", "data", "directory for output artifacts")
	cmd.Flags().Bool("progress", true, "show a progress bar")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("process.engine", cmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("process.inbox", cmd.Flags().Lookup("inbox"))
	_ = viper.BindPFlag("process.data", cmd.Flags().Lookup("data"))
	_ = viper.BindPFlag("process.progress", cmd.Flags().Lookup("progress"))

	return cmd
}

func runProcess(cmd *cobra.Command, _ []string) error {
	engine := viper.GetString("process.engine")
	inbox := viper.GetString("process.inbox")
	data := viper.GetString("process.data")
	progress := viper.GetBool("process.progress")

	slog.Info(cli.FormatTitle("Processing inquiry inbox..."))

	catalog, rules, err := loadReferenceData()
	if err != nil {
		return err
	}

	calculator, err := quote.NewCalculator(catalog, rules)
	if err != nil {
		return fmt.Errorf("failed to initialize quote calculator: %w", err)
	}

	runner, err := pipeline.NewRunner(pipeline.DefaultDirs(inbox, data), calculator, progress)
	if err != nil {
		return fmt.Errorf("failed to prepare workspace: %w", err)
	}

	var stats pipeline.Stats
	switch engine {
	case "fuzzy":
		extractor, err := parser.NewExtractor(catalog)
		if err != nil {
			return fmt.Errorf("failed to initialize extractor: %w", err)
		}
		runner.Activity().Log("SETUP", timeline.StatusSuccess, "Configuration loaded and modules initialized.", nil)
		if stats, err = runner.RunFuzzy(cmd.Context(), extractor); err != nil {
			return err
		}
	case "llm":
		extractor, err := llm.NewExtractor(llmConfig(), catalog)
		if err != nil {
			return fmt.Errorf("failed to initialize LLM extractor: %w", err)
		}
		runner.Activity().Log("SETUP", timeline.StatusSuccess,
			fmt.Sprintf("Modules initialized successfully using '%s' provider.", viper.GetString("llm.provider")), nil)
		if stats, err = runner.RunLLM(cmd.Context(), extractor); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown engine: %s (expected fuzzy or llm)", engine)
	}

	summary := fmt.Sprintf(`Inquiries found: %d
Parsed: %d
Quotes written: %d (%d pending)
Skipped (already processed): %d
Failed: %d`,
		stats.Inquiries, stats.Parsed, stats.Quoted, stats.Pending, stats.Skipped, stats.Failed)
	slog.Info(cli.RenderBox("Workflow Summary", summary))

	if stats.Failed > 0 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("%d inquiries failed; see the activity timeline for details", stats.Failed)))
	}

	slog.Info(cli.FormatSuccess("Workflow completed"))
	return nil
}

// loadReferenceData reads and validates the catalog and discount rules the
// configured paths point at.
func loadReferenceData() (model.Catalog, model.DiscountRules, error) {
	catalog, err := config.LoadCatalog(viper.GetString("pricing.price_list"))
	if err != nil {
		return nil, model.DiscountRules{}, common.NewUserError("Could not load the price list. Check the --price-list path.", err)
	}

	rules, err := config.LoadDiscountRules(viper.GetString("pricing.discount_rules"))
	if err != nil {
		return nil, model.DiscountRules{}, common.NewUserError("Could not load the discount rules. Check the --discount-rules path.", err)
	}

	return catalog, rules, nil
}

// llmConfig assembles the LLM engine configuration from viper. Temperature is
// only forwarded when configured, so an explicit 0 survives as an explicit 0.
func llmConfig() llm.Config {
	cfg := llm.Config{
		Provider: viper.GetString("llm.provider"),
		APIKey:   viper.GetString("llm.api_key"),
		Model:    viper.GetString("llm.model"),
		BaseURL:  viper.GetString("llm.base_url"),
		Timeout:  viper.GetDuration("llm.timeout"),
	}
	if viper.IsSet("llm.temperature") {
		temperature := float32(viper.GetFloat64("llm.temperature"))
		cfg.Temperature = &temperature
	}
	return cfg
}

func init() {
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.base_url", "http://localhost:11434/api/generate")
	viper.SetDefault("llm.timeout", 120*time.Second)
}
