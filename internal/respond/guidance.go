package respond

import (
	"strings"

	"eassistant/internal/types"
)

// guidanceTemplates hold the proactive next-step suggestions for each
// conversation state.
var guidanceTemplates = map[types.State][]string{
	types.StateGreeting: {
		"I can help you process emails, extract key information, and draft professional replies. You can paste an email directly, provide a file path, or ask me what I can do!",
		"What can I help you with today? I can process emails, extract information, and help you draft replies. Just share an email or ask me about my capabilities!",
	},
	types.StateWaitingForEmail: {
		"I'm ready to help you with your email! Please share the email content, provide a file path, or paste the email text directly.",
		"Please share the email you'd like me to process. You can paste the content, provide a file path, or upload a document.",
		"I'm waiting for your email. You can share it by pasting the content or providing a file path to the email document.",
	},
	types.StateEmailLoaded: {
		"Would you like me to extract the key information and draft a reply for you?",
		"I can now extract the key details and help you draft a response. Shall I proceed?",
		"What would you like me to do with this email? I can extract key information, draft a reply, or both!",
	},
	types.StateInfoExtracted: {
		"Shall I draft a reply for you? I can make it formal, casual, or match any specific tone you prefer.",
		"Would you like me to create a draft response? I can adjust the tone to be formal, friendly, or however you'd like.",
		"Ready to draft a reply? Just let me know what tone you'd prefer, or I can use a professional default.",
	},
	types.StateDraftCreated: {
		"How does this look? I can refine it to be more formal, concise, friendly, or make any other adjustments you'd like. Or if you're happy with it, I can save it for you.",
		"What do you think of this draft? I can make it more professional, add specific details, change the tone, or save it as-is.",
		"Does this draft work for you? I can refine it further or save it to a file when you're ready.",
	},
	types.StateDraftRefined: {
		"How's this version? I can make additional changes if needed, or save it when you're satisfied.",
		"Is this better? I can continue refining it or save the draft when you're happy with it.",
		"Does this revised version work better? Let me know if you want more changes or if you're ready to save it.",
	},
	types.StateReadyToSave: {
		"Your draft is ready! I can save it to a local file or upload it to your S3 bucket. Would you like me to save it now?",
		"Perfect! Shall I save this draft for you? I can save it locally or to the cloud.",
		"This draft looks good to go! Would you like me to save it to a file?",
	},
	types.StateConversationComplete: {
		"Great! Is there anything else I can help you with? I can process another email or assist with any other email-related tasks.",
		"All done! Do you have another email you'd like me to help with, or is there anything else I can do?",
		"Perfect! Feel free to share another email if you need help with more correspondence.",
	},
	types.StateErrorRecovery: {
		"Let's try that again. What would you like me to help you with?",
		"No worries! What can I help you with next?",
		"Let me know what you'd like to do, and I'll give it another try.",
	},
}

// guidance suggests the natural next step for the given state.
func guidance(state types.State) string {
	templates, ok := guidanceTemplates[state]
	if !ok {
		return "What would you like me to help you with next?"
	}
	return pick(templates)
}

var clarificationTemplates = []string{
	"I'd be happy to help! Could you clarify what you'd like me to do?",
	"I want to make sure I understand correctly. What would you like me to help you with?",
	"I'm not quite sure what you need. Could you be more specific?",
}

// clarificationHints suggest concrete inputs per state when the
// assistant could not work out what the user wanted.
var clarificationHints = map[types.State][]string{
	types.StateGreeting: {
		"- Share an email you'd like me to process",
		"- Ask me what I can do",
		"- Provide a file path to an email document",
	},
	types.StateEmailLoaded: {
		"- Ask me to extract key information",
		"- Request a draft reply",
		"- Ask for a summary",
	},
	types.StateDraftCreated: {
		"- Ask me to refine the draft",
		"- Request to save the draft",
		"- Ask for specific changes",
	},
}

// Clarification asks the user to restate an ambiguous request, with
// examples that fit the current state.
func Clarification(state types.State) string {
	base := pick(clarificationTemplates)
	hints, ok := clarificationHints[state]
	if !ok {
		return base
	}
	return base + "\n\nFor example, you could:\n" + strings.Join(hints, "\n")
}
