// Package ack drafts acknowledgment emails from parsed inquiry events.
// Drafts confirm the items that were understood and ask targeted questions
// to resolve any gaps, so customers can unblock their own quotes.
package ack

import (
	"fmt"
	"strings"

	"github.com/trippynix/inquiry-emails-ai-workflow/internal/model"
)

// maxQuestions caps how many clarification points a single draft raises.
const maxQuestions = 2

const signOff = "\n\nBest regards,\nKreeda Labs Team"

// Draft is a ready-to-send acknowledgment email.
type Draft struct {
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// Generator builds acknowledgment drafts. It is stateless and safe for
// concurrent use.
type Generator struct{}

// NewGenerator creates an acknowledgment generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate drafts an acknowledgment for a parsed event.
func (g *Generator) Generate(event model.ParsedEvent) Draft {
	greeting := "Hello,"
	if event.Sender.Name != nil && *event.Sender.Name != "" {
		greeting = fmt.Sprintf("Hi %s,", *event.Sender.Name)
	}

	intro := buildIntro(event.ExtractedItems)
	questions := buildQuestions(event.GapsIdentified)

	closing := "\n\nWe are preparing a detailed quote for you and will send it over shortly."
	if questions != "" {
		closing = "\n\nWe will prepare a detailed quote for you as soon as we have this information."
	}

	subject := event.Subject
	if subject == "" {
		subject = "Your Inquiry"
	}

	body := greeting + "\n\n" + intro + questions + closing + signOff

	return Draft{
		RecipientEmail: event.Sender.Email,
		Subject:        "Re: " + subject,
		Body:           strings.TrimSpace(body),
	}
}

// buildIntro opens the draft by confirming what the inquiry asked for.
func buildIntro(items []model.ExtractedItem) string {
	if len(items) == 0 {
		return "Thank you for your email. Could you please provide more details about the products you are interested in?"
	}

	var confirmed []string
	for _, item := range items {
		if item.ProductName != nil && item.Quantity != nil {
			confirmed = append(confirmed, fmt.Sprintf("%d x %s", *item.Quantity, *item.ProductName))
		}
	}

	intro := "Thank you for your inquiry. We are processing your request."
	if len(confirmed) > 0 {
		intro += "\n\nWe have noted your interest in the following items:\n"
		for _, line := range confirmed {
			intro += "- " + line + "\n"
		}
	}
	return intro
}

// buildQuestions turns the identified gaps into at most two clarification
// points, prioritized: ambiguous products first, then unknown products, then
// missing quantities.
func buildQuestions(gaps []model.Gap) string {
	if len(gaps) == 0 {
		return ""
	}

	var questions []string

	if g := firstGap(gaps, model.GapAmbiguousProduct); g != nil {
		questions = append(questions, fmt.Sprintf(
			"To ensure we quote the correct item, could you please clarify which product you meant for the request: '%s'? Based on your request, we think you might mean: %s.",
			ambiguousMention(g.Details), ambiguousGuess(g.Details)))
	}

	if len(questions) < maxQuestions {
		if g := firstGap(gaps, model.GapUnknownProduct); g != nil {
			name := quotedName(g.Details)
			if name == "" {
				name = "the requested item"
			}
			questions = append(questions, fmt.Sprintf(
				"Please note that the item '%s' is not available in our catalog. We would be happy to help you find a suitable alternative.", name))
		}
	}

	if len(questions) < maxQuestions {
		if g := firstGap(gaps, model.GapMissingQuantity); g != nil {
			name := quotedName(g.Details)
			questions = append(questions, fmt.Sprintf(
				"What quantity of the '%s' would you like a quote for?", name))
		}
	}

	if len(questions) == 0 {
		return ""
	}

	out := "\n\nTo help us provide an accurate quote, we have a few points to clarify:\n\n"
	for i, q := range questions {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("%d. %s", i+1, q)
	}
	return out
}

func firstGap(gaps []model.Gap, t model.GapType) *model.Gap {
	for i := range gaps {
		if gaps[i].Type == t {
			return &gaps[i]
		}
	}
	return nil
}

// quotedName pulls the first single-quoted fragment out of a gap detail
// string, e.g. the product name from "Product 'XYZ' was identified...".
func quotedName(details string) string {
	start := strings.Index(details, "'")
	if start < 0 {
		return ""
	}
	rest := details[start+1:]
	end := strings.Index(rest, "'")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// ambiguousMention extracts the customer's original wording from an
// AMBIGUOUS_PRODUCT detail string ("Request '...' is ambiguous. ...").
func ambiguousMention(details string) string {
	head, _, _ := strings.Cut(details, "Best guess:")
	head = strings.TrimSpace(head)
	if _, after, ok := strings.Cut(head, "Request"); ok {
		head = strings.TrimSpace(after)
	}
	head = strings.TrimSuffix(head, "is ambiguous.")
	return strings.Trim(strings.TrimSpace(head), "'")
}

// ambiguousGuess extracts the best-guess clause from an AMBIGUOUS_PRODUCT
// detail string.
func ambiguousGuess(details string) string {
	_, after, ok := strings.Cut(details, "Best guess:")
	if !ok {
		return strings.TrimSpace(details)
	}
	return strings.TrimSuffix(strings.TrimSpace(after), ".")
}
