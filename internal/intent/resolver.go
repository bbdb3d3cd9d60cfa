package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"eassistant/internal/llm"
	"eassistant/internal/types"
)

// TextGenerator is the slice of the model client the resolver needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMResolver classifies ambiguous input with a model call. It is only
// consulted when the rule tables are not confident.
type LLMResolver struct {
	gen TextGenerator
}

// NewLLMResolver wraps a text generator as a Resolver.
func NewLLMResolver(gen TextGenerator) *LLMResolver {
	return &LLMResolver{gen: gen}
}

const classifyTemplate = `Analyze the user's message and classify their intent for an email assistant conversation.

Current conversation state: %s
Recent conversation:
%s
User message: %q

Classify the intent as one of: %s

IMPORTANT CONTEXT RULES:
- If the user previously declined an offer (said "no") and now says something like "ok fine", "yes", "okay", this usually means CONTINUE_WORKFLOW (they changed their mind and want to proceed)
- If the current state is "info_extracted" and the user says affirmative words after declining, they likely want to CONTINUE_WORKFLOW (draft a reply)
- Only use CLARIFICATION_NEEDED if the user's message is truly ambiguous and does not fit any workflow pattern
- Consider the natural flow: after declining a draft offer, saying "ok fine" typically means accepting the original offer

Return your response in this exact JSON format:
{
  "intent": "INTENT_NAME",
  "confidence": 0.95,
  "parameters": {
    "email_content": "extracted email if present",
    "tone": "formal/casual/etc if specified",
    "refinement_instructions": "specific changes requested",
    "cloud": false,
    "filepath": "specific filepath if mentioned"
  },
  "reasoning": "Why this intent was chosen"
}`

// Resolve asks the model to classify the input given the current state
// and recent history, and parses the JSON it returns.
func (r *LLMResolver) Resolve(ctx context.Context, input string, state types.State, history []types.Message) (types.Classification, error) {
	prompt := fmt.Sprintf(classifyTemplate,
		state, renderHistory(history), input,
		strings.Join(types.IntentNames(), ", "))

	raw, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		return types.Classification{}, fmt.Errorf("resolve intent: %w", err)
	}
	return parseClassification(raw)
}

// renderHistory formats recent messages for the classification prompt.
func renderHistory(history []types.Message) string {
	if len(history) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseClassification decodes the model's JSON answer. An unknown
// intent tag is a parse failure. Parameters decode leniently so one
// mistyped field does not discard the intent.
func parseClassification(raw string) (types.Classification, error) {
	var wire struct {
		Intent     string          `json:"intent"`
		Confidence float64         `json:"confidence"`
		Parameters json.RawMessage `json:"parameters"`
		Reasoning  string          `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &wire); err != nil {
		return types.Classification{}, fmt.Errorf("parse classification: %w", err)
	}

	it, err := types.ParseIntent(wire.Intent)
	if err != nil {
		return types.Classification{}, fmt.Errorf("parse classification: %w", err)
	}

	cl := types.Classification{
		Intent:     it,
		Confidence: wire.Confidence,
		Method:     types.MethodLLM,
		Reasoning:  wire.Reasoning,
	}
	if len(wire.Parameters) > 0 {
		_ = json.Unmarshal(wire.Parameters, &cl.Params)
	}
	return cl, nil
}
