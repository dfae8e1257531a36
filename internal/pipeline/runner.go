// Package pipeline orchestrates the inquiry-to-quote workflow over the local
// inbox: extraction, acknowledgment drafting, and quoting, with every stage
// idempotent against its existing output artifact and every step recorded in
// the activity timeline.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/ack"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/common"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/llm"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/parser"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/quote"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/timeline"
)

// Dirs holds the directory layout a run operates on.
type Dirs struct {
	Inbox    string
	Events   string
	Outbox   string
	Quotes   string
	Timeline string
}

// DefaultDirs derives the standard layout from an inbox and a data root.
func DefaultDirs(inbox, data string) Dirs {
	return Dirs{
		Inbox:    inbox,
		Events:   filepath.Join(data, "events"),
		Outbox:   filepath.Join(data, "outbox"),
		Quotes:   filepath.Join(data, "quotes"),
		Timeline: filepath.Join(data, "timeline"),
	}
}

// Stats summarizes one workflow run.
type Stats struct {
	Inquiries int
	Parsed    int
	Quoted    int
	Pending   int
	Skipped   int
	Failed    int
}

// Runner executes workflow runs. The calculator and acknowledgment generator
// are shared across runs; each run creates its output directories on demand.
// A Runner is not safe for concurrent runs: per-run stats live on the struct.
type Runner struct {
	dirs       Dirs
	activity   *timeline.Logger
	ackGen     *ack.Generator
	calculator *quote.Calculator
	progress   bool
	stats      Stats
}

// NewRunner prepares the directory layout and the activity log.
func NewRunner(dirs Dirs, calculator *quote.Calculator, progress bool) (*Runner, error) {
	for _, dir := range []string{dirs.Events, dirs.Outbox, dirs.Quotes, dirs.Timeline} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &Runner{
		dirs:       dirs,
		activity:   timeline.NewLogger(filepath.Join(dirs.Timeline, "activity.jsonl")),
		ackGen:     ack.NewGenerator(),
		calculator: calculator,
		progress:   progress,
	}, nil
}

// Activity exposes the run's timeline logger so callers can record
// setup-level events alongside the runner's own entries.
func (r *Runner) Activity() *timeline.Logger {
	return r.activity
}

// RunFuzzy executes the offline workflow: parse every inbox file with the
// fuzzy extractor, then draft acknowledgments, then generate quotes. Each
// stage skips messages whose output artifact already exists, so interrupted
// runs resume where they left off. One message's failure never aborts the
// run.
func (r *Runner) RunFuzzy(ctx context.Context, extractor *parser.Extractor) (Stats, error) {
	r.stats = Stats{}
	r.activity.Log("WORKFLOW_START", timeline.StatusInfo, "Workflow initiated.", nil)
	defer r.activity.Log("WORKFLOW_END", timeline.StatusInfo, "Workflow finished.", nil)

	files, err := r.inboxFiles()
	if err != nil {
		return r.stats, err
	}
	r.stats.Inquiries = len(files)
	common.LogInfo("Starting fuzzy extraction run", common.Fields{"inquiries": len(files), "inbox": r.dirs.Inbox})
	bar := r.newBar(len(files), "Parsing inquiries")

	r.activity.Log("EMAIL_PROCESSING_START", timeline.StatusInfo, "Starting email parsing stage.", nil)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return r.stats, err
		}
		r.parseOne(file, extractor)
		_ = bar.Add(1)
	}
	r.activity.Log("EMAIL_PROCESSING_END", timeline.StatusInfo, "Email parsing stage finished.", nil)

	events, err := r.eventFiles()
	if err != nil {
		return r.stats, err
	}

	r.activity.Log("ACK_GENERATION_START", timeline.StatusInfo, "Starting acknowledgment generation stage.", nil)
	for _, file := range events {
		if err := ctx.Err(); err != nil {
			return r.stats, err
		}
		r.acknowledgeOne(file)
	}
	r.activity.Log("ACK_GENERATION_END", timeline.StatusInfo, "Acknowledgment generation stage finished.", nil)

	r.activity.Log("QUOTE_GENERATION_START", timeline.StatusInfo, "Starting quote generation stage.", nil)
	for _, file := range events {
		if err := ctx.Err(); err != nil {
			return r.stats, err
		}
		r.quoteOne(file)
	}
	r.activity.Log("QUOTE_GENERATION_END", timeline.StatusInfo, "Quote generation stage finished.", nil)

	return r.stats, nil
}

// parseOne extracts a single inbox file into an event artifact keyed by the
// content hash.
func (r *Runner) parseOne(path string, extractor *parser.Extractor) {
	content, err := os.ReadFile(path)
	if err != nil {
		r.failure("EMAIL_PARSE", fmt.Sprintf("Failed to process %s.", filepath.Base(path)), err,
			common.Fields{"file_path": path})
		return
	}

	emailID := model.GenerateEmailID(string(content))
	outputFile := filepath.Join(r.dirs.Events, emailID+".json")
	if exists(outputFile) {
		r.stats.Skipped++
		r.activity.Log("EMAIL_PROCESSING_SKIP", timeline.StatusInfo,
			fmt.Sprintf("Skipping %s, event file already exists.", filepath.Base(path)),
			map[string]any{"email_id": emailID})
		return
	}

	event := extractor.Parse(string(content))
	if err := writeJSON(outputFile, event); err != nil {
		r.failure("EMAIL_PARSE", fmt.Sprintf("Failed to process %s.", filepath.Base(path)), err,
			common.Fields{"file_path": path})
		return
	}

	r.stats.Parsed++
	r.activity.Log("EMAIL_PARSE", timeline.StatusSuccess,
		fmt.Sprintf("Successfully parsed %s.", filepath.Base(path)),
		map[string]any{"email_id": emailID, "output_path": outputFile})
}

// acknowledgeOne drafts an acknowledgment for a stored event.
func (r *Runner) acknowledgeOne(eventPath string) {
	emailID := stem(eventPath)
	ackPath := filepath.Join(r.dirs.Outbox, emailID+"_ack.json")
	if exists(ackPath) {
		r.activity.Log("ACK_GENERATION_SKIP", timeline.StatusInfo,
			fmt.Sprintf("Skipping acknowledgment for %s, file already exists.", emailID),
			map[string]any{"event_file": eventPath})
		return
	}

	event, err := readEvent(eventPath)
	if err != nil {
		r.failure("ACK_DRAFT_CREATE", fmt.Sprintf("Failed to generate acknowledgment for event %s.", filepath.Base(eventPath)), err, nil)
		return
	}

	draft := r.ackGen.Generate(event)
	if err := writeJSON(ackPath, draft); err != nil {
		r.failure("ACK_DRAFT_CREATE", fmt.Sprintf("Failed to generate acknowledgment for event %s.", filepath.Base(eventPath)), err, nil)
		return
	}

	r.activity.Log("ACK_DRAFT_CREATE", timeline.StatusSuccess,
		fmt.Sprintf("Created acknowledgment draft for %s.", emailID),
		map[string]any{"output_path": ackPath})
}

// quoteOne prices a stored event.
func (r *Runner) quoteOne(eventPath string) {
	emailID := stem(eventPath)
	quotePath := filepath.Join(r.dirs.Quotes, emailID+".json")
	if exists(quotePath) {
		r.activity.Log("QUOTE_GENERATION_SKIP", timeline.StatusInfo,
			fmt.Sprintf("Skipping quote for %s, file already exists.", emailID), nil)
		return
	}

	event, err := readEvent(eventPath)
	if err != nil {
		r.failure("QUOTE_CREATE", fmt.Sprintf("Failed to generate quote for event %s.", filepath.Base(eventPath)), err, nil)
		return
	}

	q := r.calculator.Generate(event)
	if err := writeJSON(quotePath, q); err != nil {
		r.failure("QUOTE_CREATE", fmt.Sprintf("Failed to generate quote for event %s.", filepath.Base(eventPath)), err, nil)
		return
	}

	r.stats.Quoted++
	if q.Status == model.StatusPending {
		r.stats.Pending++
	}
	r.activity.Log("QUOTE_CREATE", timeline.StatusSuccess,
		fmt.Sprintf("Created quote for %s. Status: %s.", emailID, q.Status),
		map[string]any{"output_path": quotePath})
}

// RunLLM executes the LLM-backed workflow. Unlike the staged fuzzy run, each
// inquiry goes through inference, validation, and artifact writing in one
// pass; idempotency keys on the final quote artifact, and the file stem is
// the inquiry ID for traceability.
func (r *Runner) RunLLM(ctx context.Context, extractor *llm.Extractor) (Stats, error) {
	r.stats = Stats{}
	r.activity.Log("WORKFLOW_START", timeline.StatusInfo, "Workflow initiated.", nil)
	defer r.activity.Log("WORKFLOW_END", timeline.StatusInfo, "Workflow finished.", nil)

	files, err := r.inboxFiles()
	if err != nil {
		return r.stats, err
	}
	r.stats.Inquiries = len(files)
	common.LogInfo("Starting LLM extraction run", common.Fields{"inquiries": len(files), "inbox": r.dirs.Inbox})
	bar := r.newBar(len(files), "Processing inquiries")

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return r.stats, err
		}
		r.processLLMOne(ctx, file, extractor)
		_ = bar.Add(1)
	}

	return r.stats, nil
}

func (r *Runner) processLLMOne(ctx context.Context, path string, extractor *llm.Extractor) {
	emailID := stem(path)

	quotePath := filepath.Join(r.dirs.Quotes, emailID+".json")
	if exists(quotePath) {
		r.stats.Skipped++
		r.activity.Log("PROCESSING_SKIP", timeline.StatusInfo,
			fmt.Sprintf("Skipping %s, quote already exists.", filepath.Base(path)),
			map[string]any{"email_id": emailID})
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		r.failure("PROCESSING_FAILURE", fmt.Sprintf("Failed to process %s.", filepath.Base(path)), err,
			common.Fields{"email_id": emailID})
		return
	}

	r.activity.Log("LLM_INFERENCE_START", timeline.StatusInfo, "Sending prompt to LLM.",
		map[string]any{"email_id": emailID})

	event, ackBody, err := extractor.Extract(ctx, emailID, string(content))
	if err != nil {
		r.failure("PROCESSING_FAILURE", fmt.Sprintf("Failed to process %s.", filepath.Base(path)), err,
			common.Fields{"email_id": emailID})
		return
	}
	r.activity.Log("LLM_INFERENCE_SUCCESS", timeline.StatusSuccess,
		"Successfully received and validated response from LLM.",
		map[string]any{"email_id": emailID})

	eventPath := filepath.Join(r.dirs.Events, emailID+".json")
	if err := writeJSON(eventPath, event); err != nil {
		r.failure("PROCESSING_FAILURE", fmt.Sprintf("Failed to process %s.", filepath.Base(path)), err,
			common.Fields{"email_id": emailID})
		return
	}
	r.stats.Parsed++
	r.activity.Log("PARSING_COMPLETE", timeline.StatusSuccess, "Parsed event data saved successfully.",
		map[string]any{"email_id": emailID, "path": eventPath})

	subject := event.Subject
	if subject == "" {
		subject = "Your Inquiry"
	}
	draft := ack.Draft{
		RecipientEmail: event.Sender.Email,
		Subject:        "Re: " + subject,
		Body:           ackBody,
	}
	ackPath := filepath.Join(r.dirs.Outbox, emailID+"_ack.json")
	if err := writeJSON(ackPath, draft); err != nil {
		r.failure("PROCESSING_FAILURE", fmt.Sprintf("Failed to process %s.", filepath.Base(path)), err,
			common.Fields{"email_id": emailID})
		return
	}
	r.activity.Log("ACKNOWLEDGMENT_DRAFTED", timeline.StatusSuccess, "Acknowledgment draft saved successfully.",
		map[string]any{"email_id": emailID, "path": ackPath})

	q := r.calculator.Generate(event)
	if err := writeJSON(quotePath, q); err != nil {
		r.failure("PROCESSING_FAILURE", fmt.Sprintf("Failed to process %s.", filepath.Base(path)), err,
			common.Fields{"email_id": emailID})
		return
	}
	r.stats.Quoted++
	if q.Status == model.StatusPending {
		r.stats.Pending++
	}
	r.activity.Log("QUOTE_GENERATED", timeline.StatusSuccess, "Quote generated and saved successfully.",
		map[string]any{"email_id": emailID, "path": quotePath})
}

// failure records a per-message failure in both the timeline and the
// application log. It never aborts the run.
func (r *Runner) failure(eventType, message string, err error, fields common.Fields) {
	r.stats.Failed++
	metadata := map[string]any{"error": err.Error()}
	for k, v := range fields {
		metadata[k] = v
	}
	r.activity.Log(eventType, timeline.StatusFailure, message, metadata)
	common.LogError(err, message, fields)
}

func (r *Runner) inboxFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(r.dirs.Inbox, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan inbox %s: %w", r.dirs.Inbox, err)
	}
	return files, nil
}

func (r *Runner) eventFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(r.dirs.Events, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan events %s: %w", r.dirs.Events, err)
	}
	return files, nil
}

func (r *Runner) newBar(total int, description string) *progressbar.ProgressBar {
	if !r.progress {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func readEvent(path string) (model.ParsedEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ParsedEvent{}, fmt.Errorf("failed to read event: %w", err)
	}
	var event model.ParsedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return model.ParsedEvent{}, fmt.Errorf("failed to parse event %s: %w", path, err)
	}
	return event, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
