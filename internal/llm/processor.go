package llm

import (
	"context"
	"fmt"
	"strings"

	"eassistant/internal/types"
)

// Generator produces one completion for one prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Processor implements the email operations on top of a Generator.
type Processor struct {
	gen Generator
}

// NewProcessor wraps a generator with the email operations.
func NewProcessor(gen Generator) *Processor {
	return &Processor{gen: gen}
}

// ExtractInfo pulls sender, receiver, subject and summary out of an
// email exchange.
func (p *Processor) ExtractInfo(ctx context.Context, email string) (*types.ExtractedInfo, error) {
	raw, err := p.gen.Generate(ctx, extractPrefix+email)
	if err != nil {
		return nil, fmt.Errorf("extract info: %w", err)
	}
	info, err := decodeInfo(raw)
	if err != nil {
		return nil, fmt.Errorf("extract info: %w", err)
	}
	return info, nil
}

// DraftReply writes a reply to the email exchange, optionally in the
// requested tone.
func (p *Processor) DraftReply(ctx context.Context, email, tone string) (string, error) {
	var toneClause string
	if tone != "" {
		toneClause = fmt.Sprintf(" using a %s tone", tone)
	}
	raw, err := p.gen.Generate(ctx, fmt.Sprintf(draftTemplate, toneClause)+email)
	if err != nil {
		return "", fmt.Errorf("draft reply: %w", err)
	}
	return cleanDraft(raw), nil
}

// RefineDraft rewrites the last draft per the user's instructions,
// keeping the email summary in view so the model stays on topic.
func (p *Processor) RefineDraft(ctx context.Context, lastDraft, instructions, summary string) (string, error) {
	prompt := fmt.Sprintf(refineTemplate, instructions, lastDraft, summary)
	raw, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("refine draft: %w", err)
	}
	return cleanDraft(raw), nil
}

// Summarize condenses the email exchange to a few sentences.
func (p *Processor) Summarize(ctx context.Context, email string) (string, error) {
	out, err := p.gen.Generate(ctx, summarizePrefix+email)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// draftStartMarkers are line openings that mean the reply proper has
// begun.
var draftStartMarkers = []string{
	"hi ", "hello ", "dear ", "subject:", "to:", "from:",
	"thank you", "thanks", "i hope", "i am writing", "i would like",
	"please", "regarding", "re:",
}

// cleanDraft drops explanatory preamble the model sometimes adds
// before the reply ("Here's a draft..."). Lines ahead of the first
// greeting or subject marker are removed; drafts without a marker are
// kept whole.
func cleanDraft(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !startsReply(strings.TrimSpace(line)) {
			continue
		}
		if i == 0 {
			return s
		}
		return strings.TrimSpace(strings.Join(lines[i:], "\n"))
	}
	return s
}

func startsReply(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range draftStartMarkers {
		if strings.HasPrefix(lower, m) {
			return true
		}
	}
	return false
}
