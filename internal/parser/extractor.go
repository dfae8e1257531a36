// Package parser implements the fuzzy item/quantity extractor: it scans raw
// inquiry text, identifies the sender and subject, and links free-form
// product mentions to catalog entries with explicit confidence tiers.
package parser

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/common"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/match"
	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
)

// Confidence thresholds for fuzzy product matches. A score at or above
// HighConfidenceThreshold is a certain match; between the two thresholds the
// match is ambiguous; below MediumConfidenceThreshold the candidate is
// discarded entirely.
const (
	HighConfidenceThreshold   = 90.0
	MediumConfidenceThreshold = 75.0
)

// quantityWindow is how many characters before a product mention are searched
// for a quantity.
const quantityWindow = 50

// minCandidateLength filters out n-grams too short to be meaningful product
// mentions (articles, stray punctuation clusters).
const minCandidateLength = 4

var (
	fromHeaderRe = regexp.MustCompile(`(?m)(?:^From:\s*(.*?)\s*<([^>]+)>|^From:\s*([^\s@]+@[^\s@]+\.[^\s@]+))`)
	subjectRe    = regexp.MustCompile(`(?m)^Subject:\s*(.*)`)
	blankLineRe  = regexp.MustCompile(`\n\s*\n`)
	tokenRe      = regexp.MustCompile(`\S+`)
)

// Extractor parses raw inquiry text against a fixed catalog. It is safe for
// concurrent use: all state is read-only after construction.
type Extractor struct {
	catalog      model.Catalog
	productNames []string
	maxNameWords int
}

// NewExtractor creates an extractor over the given catalog.
// The catalog must be non-empty.
func NewExtractor(catalog model.Catalog) (*Extractor, error) {
	if len(catalog) == 0 {
		return nil, common.ErrEmptyCatalog
	}
	return &Extractor{
		catalog:      catalog,
		productNames: catalog.Names(),
		maxNameWords: catalog.MaxNameWords(),
	}, nil
}

// Parse extracts a structured event from one raw inquiry. It never fails on
// malformed content: the worst case is an event with a generic
// UNKNOWN_PRODUCT gap and no items.
func (e *Extractor) Parse(content string) model.ParsedEvent {
	body := content
	if loc := blankLineRe.FindStringIndex(content); loc != nil {
		body = content[loc[1]:]
	}

	items, gaps := e.ExtractItems(CleanBody(body))

	return model.ParsedEvent{
		EmailID:        model.GenerateEmailID(content),
		Sender:         ParseSender(content),
		Subject:        ParseSubject(content),
		ReceivedAt:     time.Now().UTC(),
		ExtractedItems: items,
		GapsIdentified: gaps,
	}
}

// ParseSender extracts the sender's name and address. The From: header is the
// most reliable source; when it carries no display name, the signature block
// is scanned instead.
func ParseSender(content string) model.Sender {
	sender := model.Sender{Email: model.DefaultSenderEmail}

	if m := fromHeaderRe.FindStringSubmatch(content); m != nil {
		switch {
		case m[1] != "" && m[2] != "":
			name := strings.TrimSpace(m[1])
			sender.Name = &name
			sender.Email = strings.TrimSpace(m[2])
		case m[3] != "":
			sender.Email = strings.TrimSpace(m[3])
		case m[2] != "":
			sender.Email = strings.TrimSpace(m[2])
		}
	}

	if sender.Name == nil {
		if name, ok := signatureName(content); ok {
			sender.Name = &name
		}
	}

	return sender
}

// signatureName scans the lines after the first sign-off keyword for
// something that looks like a person's name: one or two words, free of
// address characters. The scan deliberately keeps overwriting on each match,
// so the last qualifying line wins.
func signatureName(content string) (string, bool) {
	loc := signOffRe.FindStringIndex(content)
	if loc == nil {
		return "", false
	}

	name := ""
	found := false
	for _, line := range strings.Split(content[loc[1]:], "\n") {
		candidate := strings.Trim(strings.TrimSpace(line), ",- ")
		if len(candidate) <= 1 {
			continue
		}
		if words := len(strings.Fields(candidate)); words < 1 || words > 2 {
			continue
		}
		if strings.ContainsAny(candidate, "@<>") {
			continue
		}
		name = candidate
		found = true
	}
	return name, found
}

// ParseSubject extracts the Subject: line, defaulting when absent.
func ParseSubject(content string) string {
	if m := subjectRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return "No Subject"
}

// candidate is an n-gram that scored well enough against the catalog to
// compete in overlap resolution.
type candidate struct {
	text    string
	product string
	score   float64
	start   int
	end     int
}

// ExtractItems runs the fuzzy matching pipeline over a cleaned body:
// n-gram generation, candidate scoring, greedy overlap resolution, quantity
// lookup, and gap emission.
func (e *Extractor) ExtractItems(body string) ([]model.ExtractedItem, []model.Gap) {
	items := []model.ExtractedItem{}
	gaps := []model.Gap{}

	accepted := e.resolveOverlaps(e.scoreCandidates(body))

	for _, c := range accepted {
		windowStart := c.start - quantityWindow
		if windowStart < 0 {
			windowStart = 0
		}
		quantity := ParseQuantity(body[windowStart:c.start])
		// A literal 0 in the window counts as no usable quantity.
		hasQuantity := quantity != nil && *quantity > 0

		item := model.ExtractedItem{
			MentionedAs: c.text,
			Quantity:    quantity,
			Confidence:  model.Confidence{Product: round2(c.score / 100)},
		}
		if hasQuantity {
			item.Confidence.Quantity = 1.0
		}

		if c.score >= HighConfidenceThreshold {
			product := c.product
			item.ProductName = &product
			if !hasQuantity {
				gaps = append(gaps, model.Gap{
					Type:    model.GapMissingQuantity,
					Details: fmt.Sprintf("Product '%s' was identified, but no quantity was found nearby.", product),
				})
			}
		} else {
			gaps = append(gaps, model.Gap{
				Type:    model.GapAmbiguousProduct,
				Details: fmt.Sprintf("Request '%s' is ambiguous. Best guess: '%s' (Score: %.0f).", c.text, c.product, c.score),
			})
		}

		items = append(items, item)
	}

	if len(items) == 0 && len(gaps) == 0 {
		gaps = append(gaps, model.Gap{
			Type:    model.GapUnknownProduct,
			Details: "No product was matched to any known product.",
		})
	}

	return items, gaps
}

// scoreCandidates generates every n-gram up to one word longer than the
// longest catalog name and keeps those scoring at least the medium threshold.
// Each n-gram's text is the original substring between its first and last
// token, so inter-word spacing and punctuation survive into mentioned_as.
func (e *Extractor) scoreCandidates(body string) []candidate {
	tokens := tokenRe.FindAllStringIndex(body, -1)
	maxN := e.maxNameWords + 1

	var candidates []candidate
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			start, end := tokens[i][0], tokens[i+n-1][1]
			text := body[start:end]
			if len(text) < minCandidateLength {
				continue
			}
			product, score := match.BestMatch(text, e.productNames)
			if score >= MediumConfidenceThreshold {
				candidates = append(candidates, candidate{
					text:    text,
					product: product,
					score:   score,
					start:   start,
					end:     end,
				})
			}
		}
	}
	return candidates
}

// resolveOverlaps greedily accepts candidates in descending (score, text
// length) order, claiming their character spans. A candidate touching any
// already-claimed position is dropped regardless of its own score. This is a
// local-greedy heuristic, not a globally optimal interval selection.
func (e *Extractor) resolveOverlaps(candidates []candidate) []candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return len(candidates[i].text) > len(candidates[j].text)
	})

	claimed := map[int]bool{}
	var accepted []candidate
	for _, c := range candidates {
		overlapping := false
		for i := c.start; i < c.end; i++ {
			if claimed[i] {
				overlapping = true
				break
			}
		}
		if overlapping {
			continue
		}
		accepted = append(accepted, c)
		for i := c.start; i < c.end; i++ {
			claimed[i] = true
		}
	}
	return accepted
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
