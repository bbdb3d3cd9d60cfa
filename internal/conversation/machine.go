package conversation

import (
	"github.com/rs/zerolog/log"

	"eassistant/internal/session"
	"eassistant/internal/types"
)

// transitions is the full state-transition table. A missing entry
// means the intent is invalid in that state; read-only intents are not
// listed because they are valid everywhere and never change state.
var transitions = map[types.State]map[types.Intent]types.State{
	types.StateGreeting: {
		types.IntentLoadEmail:   types.StateEmailLoaded,
		types.IntentExtractInfo: types.StateInfoExtracted,
	},
	types.StateWaitingForEmail: {
		types.IntentLoadEmail: types.StateEmailLoaded,
	},
	types.StateEmailLoaded: {
		types.IntentExtractInfo:      types.StateInfoExtracted,
		types.IntentDraftReply:       types.StateDraftCreated,
		types.IntentContinueWorkflow: types.StateInfoExtracted,
		types.IntentDeclineOffer:     types.StateEmailLoaded,
		types.IntentLoadEmail:        types.StateEmailLoaded,
	},
	types.StateInfoExtracted: {
		types.IntentDraftReply:       types.StateDraftCreated,
		types.IntentContinueWorkflow: types.StateDraftCreated,
		types.IntentDeclineOffer:     types.StateInfoExtracted,
		types.IntentExtractInfo:      types.StateInfoExtracted,
		types.IntentLoadEmail:        types.StateEmailLoaded,
	},
	types.StateDraftCreated: {
		types.IntentRefineDraft:      types.StateDraftRefined,
		types.IntentSaveDraft:        types.StateReadyToSave,
		types.IntentContinueWorkflow: types.StateReadyToSave,
		types.IntentDeclineOffer:     types.StateDraftCreated,
		types.IntentDraftReply:       types.StateDraftCreated,
		types.IntentExtractInfo:      types.StateDraftCreated,
		types.IntentLoadEmail:        types.StateEmailLoaded,
	},
	types.StateDraftRefined: {
		types.IntentRefineDraft:      types.StateDraftRefined,
		types.IntentSaveDraft:        types.StateReadyToSave,
		types.IntentContinueWorkflow: types.StateReadyToSave,
		types.IntentDeclineOffer:     types.StateDraftRefined,
		types.IntentDraftReply:       types.StateDraftCreated,
		types.IntentExtractInfo:      types.StateDraftRefined,
		types.IntentLoadEmail:        types.StateEmailLoaded,
	},
	types.StateReadyToSave: {
		types.IntentSaveDraft:   types.StateConversationComplete,
		types.IntentRefineDraft: types.StateDraftRefined,
		types.IntentDraftReply:  types.StateDraftCreated,
		types.IntentLoadEmail:   types.StateEmailLoaded,
	},
	types.StateConversationComplete: {
		types.IntentLoadEmail: types.StateEmailLoaded,
	},
	types.StateErrorRecovery: {
		types.IntentLoadEmail:   types.StateEmailLoaded,
		types.IntentDraftReply:  types.StateDraftCreated,
		types.IntentSaveDraft:   types.StateConversationComplete,
		types.IntentExtractInfo: types.StateInfoExtracted,
		types.IntentRefineDraft: types.StateDraftRefined,
	},
}

// intentOrder fixes the listing order of ValidIntents.
var intentOrder = []types.Intent{
	types.IntentLoadEmail,
	types.IntentExtractInfo,
	types.IntentDraftReply,
	types.IntentRefineDraft,
	types.IntentSaveDraft,
	types.IntentContinueWorkflow,
	types.IntentDeclineOffer,
}

// readOnlyIntents are valid in every state and leave it unchanged.
var readOnlyIntents = []types.Intent{
	types.IntentGeneralHelp,
	types.IntentClarificationNeeded,
	types.IntentViewSessionHistory,
	types.IntentViewSpecificSession,
}

// ReadOnly reports whether an intent only reads the conversation.
func ReadOnly(intent types.Intent) bool {
	switch intent {
	case types.IntentGeneralHelp, types.IntentClarificationNeeded,
		types.IntentViewSessionHistory, types.IntentViewSpecificSession:
		return true
	}
	return false
}

// Machine owns all writes to a Context. It validates intents against
// the transition table, commits operation results, and archives the
// finished session when a new email displaces a savable one.
type Machine struct {
	ctx   *Context
	store *session.Store
}

// NewMachine wires a machine to the context it governs and the store
// that receives archived sessions.
func NewMachine(ctx *Context, store *session.Store) *Machine {
	return &Machine{ctx: ctx, store: store}
}

// Context returns the governed context for read access.
func (m *Machine) Context() *Context { return m.ctx }

// Validate reports whether the intent is allowed in the current state.
// Read-only intents are always allowed.
func (m *Machine) Validate(intent types.Intent) bool {
	if ReadOnly(intent) {
		return true
	}
	_, ok := transitions[m.ctx.state][intent]
	return ok
}

// ValidIntents lists the intents accepted in the current state,
// transition intents first, read-only intents after.
func (m *Machine) ValidIntents() []types.Intent {
	row := transitions[m.ctx.state]
	out := make([]types.Intent, 0, len(row)+len(readOnlyIntents))
	for _, it := range intentOrder {
		if _, ok := row[it]; ok {
			out = append(out, it)
		}
	}
	return append(out, readOnlyIntents...)
}

// Apply commits an operation result and returns the state after the
// turn. A failed transition intent moves the conversation to error
// recovery and keeps the email, info and drafts intact so the user can
// retry. A read-only intent never changes state, not even on failure.
// Applying a transition intent that Validate would reject leaves the
// state alone.
func (m *Machine) Apply(intent types.Intent, res Result) types.State {
	if ReadOnly(intent) {
		if !res.Ok {
			m.ctx.lastError = res.Reason
		} else if intent == types.IntentViewSpecificSession && res.Session != nil {
			m.ctx.viewedSession = res.Session
		}
		m.ctx.lastIntent = intent
		return m.ctx.state
	}

	if !res.Ok {
		m.ctx.lastError = res.Reason
		m.ctx.lastIntent = intent
		prev := m.ctx.state
		m.ctx.state = types.StateErrorRecovery
		log.Debug().
			Str("conversation_id", m.ctx.id).
			Str("intent", intent.String()).
			Str("from", prev.String()).
			Str("reason", res.Reason).
			Msg("operation failed, entering error recovery")
		return m.ctx.state
	}

	next, ok := transitions[m.ctx.state][intent]
	if !ok {
		log.Warn().
			Str("conversation_id", m.ctx.id).
			Str("intent", intent.String()).
			Str("state", m.ctx.state.String()).
			Msg("apply called for invalid transition, ignoring")
		return m.ctx.state
	}

	if intent == types.IntentLoadEmail {
		m.beginEmail(res)
	} else {
		m.commit(intent, res)
	}

	prev := m.ctx.state
	m.ctx.state = next
	m.ctx.lastIntent = intent
	m.ctx.lastError = ""
	if prev != next {
		log.Debug().
			Str("conversation_id", m.ctx.id).
			Str("intent", intent.String()).
			Str("from", prev.String()).
			Str("to", next.String()).
			Msg("state transition")
	}
	return next
}

// beginEmail starts work on a new email. If the displaced session had
// reached a savable state it is archived first; an unsaved draft is
// discarded with a trace so nothing silently vanishes from the logs.
func (m *Machine) beginEmail(res Result) {
	if m.ctx.state.Savable() {
		m.archiveCurrent()
	} else if len(m.ctx.drafts) > 0 {
		log.Debug().
			Str("conversation_id", m.ctx.id).
			Int("drafts", len(m.ctx.drafts)).
			Msg("discarding unsaved drafts for new email")
	}
	m.ctx.resetEmail()
	m.ctx.emailContent = res.Email
	m.ctx.info = res.Info
}

// commit writes an operation's payload into the context.
func (m *Machine) commit(intent types.Intent, res Result) {
	switch intent {
	case types.IntentExtractInfo:
		if res.Info != nil {
			m.ctx.info = res.Info
		}
	case types.IntentDraftReply, types.IntentRefineDraft:
		if res.Draft != "" {
			m.ctx.drafts = append(m.ctx.drafts, res.Draft)
		}
	case types.IntentContinueWorkflow:
		// Continue produces whatever the next step was: info when it
		// extracted, a draft when it drafted, nothing when it saved.
		if res.Info != nil {
			m.ctx.info = res.Info
		}
		if res.Draft != "" {
			m.ctx.drafts = append(m.ctx.drafts, res.Draft)
		}
	}
}

// archiveCurrent snapshots the finished session into the store. The
// snapshot is a deep copy, so later turns cannot alter the archive.
func (m *Machine) archiveCurrent() {
	snap := m.snapshot()
	if snap == nil {
		return
	}
	id, err := m.store.Archive(snap)
	if err != nil {
		log.Error().Err(err).
			Str("conversation_id", m.ctx.id).
			Msg("failed to archive completed session")
		return
	}
	log.Info().
		Str("conversation_id", m.ctx.id).
		Int64("session_id", id).
		Str("subject", snap.Subject).
		Msg("archived completed session")
}

// snapshot copies the email-scoped context into an archive record.
func (m *Machine) snapshot() *types.EmailSession {
	if m.ctx.emailContent == "" {
		return nil
	}
	snap := &types.EmailSession{
		StateAtArchive: m.ctx.state,
		EmailContent:   m.ctx.emailContent,
	}
	if len(m.ctx.drafts) > 0 {
		snap.Drafts = make([]string, len(m.ctx.drafts))
		copy(snap.Drafts, m.ctx.drafts)
	}
	if m.ctx.info != nil {
		cp := *m.ctx.info
		snap.Info = &cp
		snap.Subject = cp.Subject
		snap.Sender = cp.SenderName
		snap.Summary = cp.Summary
	}
	return snap
}

// RecordUser appends a user message to the bounded history.
func (m *Machine) RecordUser(content string) {
	m.ctx.appendHistory("user", content)
}

// RecordAssistant appends an assistant message to the bounded history.
func (m *Machine) RecordAssistant(content string) {
	m.ctx.appendHistory("assistant", content)
}

// Reset returns the conversation to the greeting state and clears the
// email-scoped context. Archived sessions are kept.
func (m *Machine) Reset() {
	m.ctx.resetEmail()
	m.ctx.state = types.StateGreeting
	m.ctx.lastIntent = types.IntentClarificationNeeded
	log.Debug().Str("conversation_id", m.ctx.id).Msg("conversation reset")
}
