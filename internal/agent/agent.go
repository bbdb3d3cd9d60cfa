// Package agent orchestrates one conversation turn: classify the
// input, validate it against the state machine, execute the operation,
// commit the transition and render the reply.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"eassistant/internal/conversation"
	"eassistant/internal/respond"
	"eassistant/internal/session"
	"eassistant/internal/types"
)

// Classifier determines what the user wants from one input.
type Classifier interface {
	Classify(ctx context.Context, input string, state types.State, history []types.Message) types.Classification
}

// Precondition sentinels for operations that need context the
// conversation does not have yet.
var (
	ErrNoEmail = errors.New("no email loaded")
	ErrNoDraft = errors.New("no draft available")
)

// Metrics counts what happened across the conversation so far.
type Metrics struct {
	Turns         int
	Succeeded     int
	Failed        int
	RuleHits      int
	ResolverCalls int
}

// TurnReport is the outcome of one processed turn.
type TurnReport struct {
	Input      string  `json:"input"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
	State      string  `json:"state"`
	Response   string  `json:"response"`
}

// Agent wires the classifier, state machine, operations and store into
// the conversational loop.
type Agent struct {
	classifier Classifier
	machine    *conversation.Machine
	ops        Operations
	store      *session.Store
	metrics    Metrics
}

// New assembles an agent.
func New(classifier Classifier, machine *conversation.Machine, ops Operations, store *session.Store) *Agent {
	return &Agent{
		classifier: classifier,
		machine:    machine,
		ops:        ops,
		store:      store,
	}
}

// Context exposes the conversation context for read access.
func (a *Agent) Context() *conversation.Context { return a.machine.Context() }

// Metrics returns a copy of the current counters.
func (a *Agent) Metrics() Metrics { return a.metrics }

// ProcessTurn runs one full turn and returns what happened. It never
// returns an error: failures become error-recovery responses.
func (a *Agent) ProcessTurn(ctx context.Context, input string) TurnReport {
	a.metrics.Turns++
	cc := a.machine.Context()
	a.machine.RecordUser(input)

	cl := a.classifier.Classify(ctx, input, cc.State(), cc.RecentHistory(3))
	switch cl.Method {
	case types.MethodRules:
		a.metrics.RuleHits++
	case types.MethodLLM:
		a.metrics.ResolverCalls++
	}
	log.Info().
		Str("conversation_id", cc.ID()).
		Str("intent", cl.Intent.String()).
		Float64("confidence", cl.Confidence).
		Str("method", cl.Method).
		Str("state", cc.State().String()).
		Msg("turn classified")

	if cl.Intent == types.IntentClarificationNeeded {
		return a.finish(cl, respond.Clarification(cc.State()))
	}

	if !a.machine.Validate(cl.Intent) {
		log.Debug().
			Str("intent", cl.Intent.String()).
			Str("state", cc.State().String()).
			Msg("intent not valid in state")
		return a.finish(cl, respond.Mismatch(cc.State()))
	}

	res := a.execute(ctx, cl, input)
	state := a.machine.Apply(cl.Intent, res)
	if res.Ok {
		a.metrics.Succeeded++
	} else {
		a.metrics.Failed++
	}

	return a.finish(cl, respond.Response(cl.Intent, state, res))
}

// finish records the reply and assembles the report.
func (a *Agent) finish(cl types.Classification, response string) TurnReport {
	a.machine.RecordAssistant(response)
	cc := a.machine.Context()
	return TurnReport{
		Input:      lastUserInput(cc),
		Intent:     cl.Intent.String(),
		Confidence: cl.Confidence,
		Method:     cl.Method,
		State:      cc.State().String(),
		Response:   response,
	}
}

func lastUserInput(cc *conversation.Context) string {
	history := cc.History()
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return history[i].Content
		}
	}
	return ""
}

// execute runs the classified operation and reports its result. The
// machine commits the payload afterwards; nothing here mutates the
// context.
func (a *Agent) execute(ctx context.Context, cl types.Classification, input string) conversation.Result {
	cc := a.machine.Context()

	switch cl.Intent {
	case types.IntentLoadEmail:
		content := cl.Params.EmailContent
		if content == "" {
			content = input
		}
		text, info, err := a.ops.LoadEmail(ctx, content)
		if err != nil {
			return conversation.Failure(err.Error())
		}
		return conversation.Result{Ok: true, Email: text, Info: info}

	case types.IntentExtractInfo:
		if !cc.HasEmail() {
			return conversation.Failure(ErrNoEmail.Error())
		}
		if info := cc.Info(); info != nil {
			return conversation.Result{Ok: true, Info: info}
		}
		info, err := a.ops.ExtractInfo(ctx, cc.EmailContent())
		if err != nil {
			return conversation.Failure(err.Error())
		}
		return conversation.Result{Ok: true, Info: info}

	case types.IntentDraftReply:
		if !cc.HasEmail() {
			return conversation.Failure(ErrNoEmail.Error())
		}
		draft, err := a.ops.DraftReply(ctx, cc.EmailContent(), cl.Params.Tone)
		if err != nil {
			return conversation.Failure(err.Error())
		}
		return conversation.Result{Ok: true, Draft: draft, Tone: cl.Params.Tone}

	case types.IntentRefineDraft:
		last, ok := cc.ActiveDraft()
		if !ok {
			return conversation.Failure(ErrNoDraft.Error())
		}
		instructions := cl.Params.Instructions
		if instructions == "" {
			instructions = input
		}
		var summary string
		if info := cc.Info(); info != nil {
			summary = info.Summary
		}
		draft, err := a.ops.RefineDraft(ctx, last, instructions, summary)
		if err != nil {
			return conversation.Failure(err.Error())
		}
		return conversation.Result{Ok: true, Draft: draft}

	case types.IntentSaveDraft:
		draft, ok := cc.ActiveDraft()
		if !ok {
			return conversation.Failure(ErrNoDraft.Error())
		}
		location, err := a.ops.SaveDraft(ctx, draft, cl.Params.SavePath, cl.Params.Cloud)
		if err != nil {
			return conversation.Failure(err.Error())
		}
		return conversation.Result{Ok: true, SavedTo: location, Cloud: cl.Params.Cloud}

	case types.IntentContinueWorkflow:
		return a.continueWorkflow(ctx)

	case types.IntentDeclineOffer, types.IntentGeneralHelp:
		return conversation.OK()

	case types.IntentViewSessionHistory:
		sessions, err := a.store.ListSummaries()
		if err != nil {
			return conversation.Failure(err.Error())
		}
		return conversation.Result{Ok: true, Sessions: sessions}

	case types.IntentViewSpecificSession:
		id := cl.Params.SessionID
		if id == 0 {
			return conversation.Failure(`I couldn't tell which session you meant. Try "show session 2".`)
		}
		s, err := a.store.Get(id)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return conversation.Failure(fmt.Sprintf("session %d not found", id))
			}
			return conversation.Failure(err.Error())
		}
		return conversation.Result{Ok: true, Session: s}
	}

	return conversation.Failure(fmt.Sprintf("no handler for intent %s", cl.Intent))
}

// continueWorkflow advances whatever the obvious next step is for the
// current state.
func (a *Agent) continueWorkflow(ctx context.Context) conversation.Result {
	cc := a.machine.Context()
	switch cc.State() {
	case types.StateEmailLoaded:
		if info := cc.Info(); info != nil {
			return conversation.Result{Ok: true, Info: info}
		}
		info, err := a.ops.ExtractInfo(ctx, cc.EmailContent())
		if err != nil {
			return conversation.Failure(err.Error())
		}
		return conversation.Result{Ok: true, Info: info}

	case types.StateInfoExtracted:
		draft, err := a.ops.DraftReply(ctx, cc.EmailContent(), "")
		if err != nil {
			return conversation.Failure(err.Error())
		}
		return conversation.Result{Ok: true, Draft: draft}
	}

	// DRAFT_CREATED and DRAFT_REFINED just advance toward saving.
	return conversation.OK()
}

// Summary describes the conversation for the status display.
type Summary struct {
	State            types.State
	StartedAt        string
	Metrics          Metrics
	HasEmail         bool
	HasDraft         bool
	DraftCount       int
	HistoryLength    int
	ArchivedSessions int
}

// Summary reports the current conversation status.
func (a *Agent) Summary() Summary {
	cc := a.machine.Context()
	_, hasDraft := cc.ActiveDraft()
	return Summary{
		State:            cc.State(),
		StartedAt:        cc.StartedAt(),
		Metrics:          a.metrics,
		HasEmail:         cc.HasEmail(),
		HasDraft:         hasDraft,
		DraftCount:       cc.DraftCount(),
		HistoryLength:    len(cc.History()),
		ArchivedSessions: a.store.Count(),
	}
}

// Reset starts a fresh conversation, clearing counters. Archived
// sessions survive.
func (a *Agent) Reset() {
	a.machine.Reset()
	a.metrics = Metrics{}
}
