// Package intent classifies user input into workflow intents. Rules
// decide the clear cases so common commands never cost a model call;
// a resolver handles the ambiguous remainder.
package intent

import (
	"context"

	"github.com/rs/zerolog/log"

	"eassistant/internal/types"
)

// Confidence thresholds. At or above RuleThreshold a rule match is
// final; below WeakThreshold a rule match is too vague to act on.
const (
	RuleThreshold = 0.8
	WeakThreshold = 0.3
)

// Resolver resolves ambiguous input to an intent, typically with a
// model call.
type Resolver interface {
	Resolve(ctx context.Context, input string, state types.State, history []types.Message) (types.Classification, error)
}

// Classifier is the hybrid rule/model intent classifier. A nil
// resolver degrades it to rules only.
type Classifier struct {
	resolver Resolver
}

// NewClassifier builds a classifier backed by the given resolver.
func NewClassifier(resolver Resolver) *Classifier {
	return &Classifier{resolver: resolver}
}

// Classify determines what the user wants. It never returns an error:
// when neither rules nor the resolver produce a usable answer, the
// result is the clarification intent with zero confidence.
func (c *Classifier) Classify(ctx context.Context, input string, state types.State, history []types.Message) types.Classification {
	ruleRes := matchRules(input, state)
	if ruleRes.Confidence >= RuleThreshold {
		log.Debug().
			Str("intent", ruleRes.Intent.String()).
			Float64("confidence", ruleRes.Confidence).
			Str("state", state.String()).
			Msg("rules classified input")
		return ruleRes
	}

	if c.resolver != nil {
		llmRes, err := c.resolver.Resolve(ctx, input, state, history)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("intent resolver failed, falling back to rules")
		case llmRes.Confidence > ruleRes.Confidence:
			log.Debug().
				Str("intent", llmRes.Intent.String()).
				Float64("confidence", llmRes.Confidence).
				Str("state", state.String()).
				Msg("resolver classified input")
			return llmRes
		}
	}

	if ruleRes.Confidence > WeakThreshold {
		return ruleRes
	}

	return types.Classification{
		Intent:     types.IntentClarificationNeeded,
		Confidence: 0,
		Method:     types.MethodFallback,
		Reasoning:  "input is ambiguous and needs clarification",
	}
}
