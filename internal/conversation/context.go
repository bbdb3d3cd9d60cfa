// Package conversation holds the live state of one email-processing
// dialogue: the mutable context and the state machine that is the only
// thing allowed to change it.
package conversation

import (
	"github.com/google/uuid"

	"eassistant/internal/types"
)

// DefaultHistoryLimit bounds the conversation history when no limit is
// configured.
const DefaultHistoryLimit = 50

// Context is the session-scoped record of the conversation: current
// state, the email being worked on, its extracted info, the draft
// sequence, and a bounded message history. All fields are unexported;
// reads go through getters and every mutation goes through the Machine.
type Context struct {
	id            string
	state         types.State
	emailContent  string
	info          *types.ExtractedInfo
	drafts        []string
	history       []types.Message
	historyLimit  int
	viewedSession *types.EmailSession
	lastIntent    types.Intent
	lastError     string
	startedAt     string
}

// NewContext creates a fresh conversation in the greeting state.
func NewContext(historyLimit int) *Context {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Context{
		id:           uuid.NewString(),
		state:        types.StateGreeting,
		historyLimit: historyLimit,
		startedAt:    types.Now(),
	}
}

// ID returns the conversation id, used as a log correlation field.
func (c *Context) ID() string { return c.id }

// State returns the current conversation state.
func (c *Context) State() types.State { return c.state }

// StartedAt returns when the conversation began, ISO 8601.
func (c *Context) StartedAt() string { return c.startedAt }

// EmailContent returns the text of the currently loaded email.
func (c *Context) EmailContent() string { return c.emailContent }

// HasEmail reports whether an email is loaded.
func (c *Context) HasEmail() bool { return c.emailContent != "" }

// Info returns the extracted info for the current email, or nil.
func (c *Context) Info() *types.ExtractedInfo {
	if c.info == nil {
		return nil
	}
	cp := *c.info
	return &cp
}

// HasInfo reports whether key info has been extracted.
func (c *Context) HasInfo() bool { return c.info != nil }

// Drafts returns a copy of the draft sequence, oldest first.
func (c *Context) Drafts() []string {
	out := make([]string, len(c.drafts))
	copy(out, c.drafts)
	return out
}

// DraftCount returns the number of draft versions so far.
func (c *Context) DraftCount() int { return len(c.drafts) }

// ActiveDraft returns the most recent draft. The active draft is
// always the last element of the sequence.
func (c *Context) ActiveDraft() (string, bool) {
	if len(c.drafts) == 0 {
		return "", false
	}
	return c.drafts[len(c.drafts)-1], true
}

// History returns a copy of the bounded conversation history.
func (c *Context) History() []types.Message {
	out := make([]types.Message, len(c.history))
	copy(out, c.history)
	return out
}

// RecentHistory returns up to n of the most recent messages.
func (c *Context) RecentHistory(n int) []types.Message {
	if n <= 0 || len(c.history) == 0 {
		return nil
	}
	start := len(c.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]types.Message, len(c.history)-start)
	copy(out, c.history[start:])
	return out
}

// ViewedSession returns the archived session the user is currently
// looking at, or nil when the live session is in view.
func (c *Context) ViewedSession() *types.EmailSession { return c.viewedSession }

// LastIntent returns the intent of the last committed transition.
func (c *Context) LastIntent() types.Intent { return c.lastIntent }

// LastError returns the reason recorded for the last failed operation.
func (c *Context) LastError() string { return c.lastError }

// appendHistory records a message, evicting the oldest past the limit.
func (c *Context) appendHistory(role, content string) {
	c.history = append(c.history, types.Message{
		Role:    role,
		Content: content,
		At:      types.Now(),
	})
	if over := len(c.history) - c.historyLimit; over > 0 {
		c.history = append(c.history[:0], c.history[over:]...)
	}
}

// resetEmail clears the email-scoped fields for a new email. The
// conversation history survives; archived sessions live in the store
// and are untouched.
func (c *Context) resetEmail() {
	c.emailContent = ""
	c.info = nil
	c.drafts = nil
	c.viewedSession = nil
	c.lastError = ""
}
