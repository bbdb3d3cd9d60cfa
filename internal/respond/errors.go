package respond

import (
	"eassistant/internal/types"
)

var errorTemplates = map[types.Intent][]string{
	types.IntentLoadEmail: {
		"I had trouble processing that email. Could you try pasting the email content again, or if it's a file, make sure the path is correct? I can handle text files and PDFs.",
		"I couldn't load that email. Please check if the file path is correct or try pasting the email content directly.",
	},
	types.IntentDraftReply: {
		"I wasn't able to draft a reply just now. This might be because the email content isn't loaded yet. Would you like to share the email first?",
		"I need to have an email loaded before I can draft a reply. Could you share the email content with me?",
	},
	types.IntentExtractInfo: {
		"I couldn't extract the key information from that email. The format might be unusual. Could you try sharing the email content again?",
		"I had trouble analyzing that email. Could you try repasting the email content or check if it's formatted correctly?",
	},
	types.IntentSaveDraft: {
		"I couldn't save the draft right now. Would you like me to try saving it to a different location?",
		"There was an issue saving your draft. Let me try a different approach or you can copy the content manually.",
	},
}

var generalErrorTemplates = []string{
	"I encountered an issue with that request. Let me know how you'd like to proceed, and I'll do my best to help!",
	"Something went wrong there. Could you try rephrasing your request or let me know what you'd like to do?",
}

// errorResponse keeps the conversation moving after a failed
// operation, attaching the failure reason when one was recorded.
func errorResponse(intent types.Intent, reason string) string {
	templates, ok := errorTemplates[intent]
	if !ok {
		templates = generalErrorTemplates
	}
	base := pick(templates)
	if reason != "" {
		return base + "\n\nError details: " + reason
	}
	return base
}

var mismatchTemplates = []string{
	"That doesn't quite fit where we are in the conversation.",
	"I can't do that at this point in our conversation.",
}

// Mismatch explains that the requested action is not valid in the
// current state and steers the user back on track.
func Mismatch(state types.State) string {
	if guide := guidance(state); guide != "" {
		return pick(mismatchTemplates) + " " + guide
	}
	return pick(mismatchTemplates)
}
