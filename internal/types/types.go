// Package types defines the shared conversation vocabulary for eassistant.
package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Intent is the classified user goal for one conversational turn.
// The set is closed: adding an intent means touching the transition
// table in internal/conversation as well.
type Intent int

const (
	// IntentClarificationNeeded is the zero value so an uninitialized
	// classification always asks rather than acts.
	IntentClarificationNeeded Intent = iota
	IntentLoadEmail
	IntentDraftReply
	IntentExtractInfo
	IntentRefineDraft
	IntentSaveDraft
	IntentGeneralHelp
	IntentContinueWorkflow
	IntentDeclineOffer
	IntentViewSessionHistory
	IntentViewSpecificSession
)

var intentNames = map[Intent]string{
	IntentClarificationNeeded: "CLARIFICATION_NEEDED",
	IntentLoadEmail:           "LOAD_EMAIL",
	IntentDraftReply:          "DRAFT_REPLY",
	IntentExtractInfo:         "EXTRACT_INFO",
	IntentRefineDraft:         "REFINE_DRAFT",
	IntentSaveDraft:           "SAVE_DRAFT",
	IntentGeneralHelp:         "GENERAL_HELP",
	IntentContinueWorkflow:    "CONTINUE_WORKFLOW",
	IntentDeclineOffer:        "DECLINE_OFFER",
	IntentViewSessionHistory:  "VIEW_SESSION_HISTORY",
	IntentViewSpecificSession: "VIEW_SPECIFIC_SESSION",
}

// String returns the wire tag for the intent (e.g. "LOAD_EMAIL").
func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Intent(%d)", int(i))
}

// ParseIntent maps a wire tag back to an Intent. Unknown tags are an
// error so a malformed resolver response never becomes a real intent.
func ParseIntent(s string) (Intent, error) {
	tag := strings.ToUpper(strings.TrimSpace(s))
	for intent, name := range intentNames {
		if name == tag {
			return intent, nil
		}
	}
	return IntentClarificationNeeded, fmt.Errorf("unknown intent %q", s)
}

// IntentNames returns all wire tags in a stable order, for prompts.
func IntentNames() []string {
	names := make([]string, 0, len(intentNames))
	for _, name := range intentNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State is one position in the email-processing conversation flow.
type State int

const (
	StateGreeting State = iota
	StateWaitingForEmail
	StateEmailLoaded
	StateInfoExtracted
	StateDraftCreated
	StateDraftRefined
	StateReadyToSave
	StateConversationComplete
	StateErrorRecovery
)

var stateNames = map[State]string{
	StateGreeting:             "greeting",
	StateWaitingForEmail:      "waiting_for_email",
	StateEmailLoaded:          "email_loaded",
	StateInfoExtracted:        "info_extracted",
	StateDraftCreated:         "draft_created",
	StateDraftRefined:         "draft_refined",
	StateReadyToSave:          "ready_to_save",
	StateConversationComplete: "conversation_complete",
	StateErrorRecovery:        "error_recovery",
}

// String returns the state label (e.g. "email_loaded").
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState maps a state label back to a State.
func ParseState(s string) (State, error) {
	label := strings.ToLower(strings.TrimSpace(s))
	for state, name := range stateNames {
		if name == label {
			return state, nil
		}
	}
	return StateGreeting, fmt.Errorf("unknown state %q", s)
}

// Title returns a human-readable form of the state label.
func (s State) Title() string {
	words := strings.Split(s.String(), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Savable reports whether the state represents a finished-enough email
// whose session should be archived before a new one begins.
func (s State) Savable() bool {
	return s == StateReadyToSave || s == StateConversationComplete
}

// Classification method constants.
const (
	MethodRules    = "rules"
	MethodLLM      = "llm"
	MethodFallback = "fallback"
)

// Params carries the parameters extracted alongside an intent.
type Params struct {
	EmailContent string `json:"email_content,omitempty"`
	FilePath     string `json:"file_path,omitempty"`
	Tone         string `json:"tone,omitempty"`
	Instructions string `json:"refinement_instructions,omitempty"`
	SavePath     string `json:"filepath,omitempty"`
	Cloud        bool   `json:"cloud,omitempty"`
	SessionID    int64  `json:"session_id,omitempty"`
}

// Classification is the immutable result of classifying one user turn.
type Classification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Params     Params  `json:"parameters"`
	Method     string  `json:"method"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// Message is one entry in the bounded conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	At      string `json:"at"`
}

// ExtractedInfo holds the key facts pulled out of an email exchange.
type ExtractedInfo struct {
	SenderName      string `json:"sender_name"`
	ReceiverName    string `json:"receiver_name"`
	SenderContact   string `json:"sender_contact_details"`
	ReceiverContact string `json:"receiver_contact_details"`
	Subject         string `json:"subject"`
	Summary         string `json:"summary"`
}

// UnmarshalJSON accepts both flat strings and nested objects for the
// contact fields, since models answer with either shape.
func (e *ExtractedInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		SenderName      string          `json:"sender_name"`
		ReceiverName    string          `json:"receiver_name"`
		SenderContact   json.RawMessage `json:"sender_contact_details"`
		ReceiverContact json.RawMessage `json:"receiver_contact_details"`
		Subject         string          `json:"subject"`
		Summary         string          `json:"summary"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.SenderName = raw.SenderName
	e.ReceiverName = raw.ReceiverName
	e.Subject = raw.Subject
	e.Summary = raw.Summary
	e.SenderContact = flattenContact(raw.SenderContact)
	e.ReceiverContact = flattenContact(raw.ReceiverContact)
	return nil
}

func flattenContact(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err == nil {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, m[k]))
		}
		return strings.Join(parts, ", ")
	}
	return strings.Trim(string(raw), `"`)
}

// EmailSession is an immutable snapshot of one processed email,
// created when the session is archived and never mutated afterwards.
type EmailSession struct {
	ID             int64          `json:"id"`
	Subject        string         `json:"subject"`
	Sender         string         `json:"sender,omitempty"`
	Summary        string         `json:"summary,omitempty"`
	StateAtArchive State          `json:"state_at_archive"`
	EmailContent   string         `json:"email_content"`
	Info           *ExtractedInfo `json:"extracted_info,omitempty"`
	Drafts         []string       `json:"drafts,omitempty"`
	ArchivedAt     string         `json:"archived_at"`
}

// FinalDraft returns the last draft of the archived session, if any.
func (s *EmailSession) FinalDraft() (string, bool) {
	if len(s.Drafts) == 0 {
		return "", false
	}
	return s.Drafts[len(s.Drafts)-1], true
}

// SessionSummary is one line of the session history listing.
type SessionSummary struct {
	ID         int64  `json:"id"`
	Subject    string `json:"subject"`
	State      State  `json:"state_at_archive"`
	ArchivedAt string `json:"archived_at"`
}

// Now returns the current time as an ISO 8601 string.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
