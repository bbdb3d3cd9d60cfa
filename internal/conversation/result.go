package conversation

import "eassistant/internal/types"

// Result is what an executed operation reports back to the machine.
// The machine commits the carried payload to the context on success;
// on failure only Reason is read and the conversation moves to error
// recovery.
type Result struct {
	Ok     bool
	Reason string

	// Payloads. An operation fills only the fields it produced.
	Email    string
	FromFile string
	Info     *types.ExtractedInfo
	Draft    string
	Tone     string
	SavedTo  string
	Cloud    bool
	Sessions []types.SessionSummary
	Session  *types.EmailSession
}

// OK returns a bare successful result.
func OK() Result { return Result{Ok: true} }

// Failure returns a failed result carrying the reason shown to the
// user and moved into the context's last-error slot.
func Failure(reason string) Result {
	return Result{Reason: reason}
}
