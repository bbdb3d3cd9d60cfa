// Package respond turns operation outcomes into conversational text.
// Every reply pairs the result of the turn with proactive guidance for
// the state the conversation landed in.
package respond

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"eassistant/internal/conversation"
	"eassistant/internal/types"
)

func pick(options []string) string {
	return options[rand.IntN(len(options))]
}

var greetings = []string{
	"Hello! I'm your email assistant. I can help you process emails, extract key information, and draft professional replies. What can I help you with today?",
	"Hi there! I'm here to help you with your emails. I can process email content, extract important details, and help you draft replies. How can I assist you?",
	"Welcome! I'm your conversational email assistant. I can help you analyze emails and create professional responses. What would you like to work on?",
}

// Greeting opens a new conversation.
func Greeting() string {
	return pick(greetings)
}

var loadTemplates = []string{
	"I've processed your email%s. %s",
	"Got it! I've loaded your email%s. %s",
	"Email processed successfully%s. %s",
}

var extractTemplates = []string{
	"Here's the key information I extracted:",
	"I've analyzed the email and found these details:",
	"Here are the key details from your email:",
}

var draftTemplates = []string{
	"I've drafted a reply for you%s:",
	"Here's a draft response%s:",
	"I've created a reply%s:",
}

var refineTemplates = []string{
	"I've refined the draft based on your feedback:",
	"Here's the updated version:",
	"I've made those changes to your draft:",
}

var saveTemplates = []string{
	"Perfect! I've saved your draft to %s.",
	"Draft saved successfully to %s.",
	"Your draft has been saved to %s.",
}

var helpTemplates = []string{
	"I'm your email assistant! Here's what I can help you with:",
	"I can help you with several email-related tasks:",
	"Here are my capabilities:",
}

var toneClauses = map[string]string{
	"formal":       " in a formal tone",
	"casual":       " in a casual tone",
	"professional": " in a professional tone",
	"friendly":     " in a friendly tone",
	"concise":      " that's concise and to the point",
}

var capabilities = []string{
	"- Process emails: load from text, file paths, or PDF files",
	"- Extract key information: sender, receiver, subject, and summary",
	"- Draft replies: professional responses with a tone of your choice",
	"- Refine drafts: more formal, casual, concise, or with added content",
	"- Save drafts: to local files or S3",
	"- Session history: review previously processed emails and their drafts",
}

// Response renders the reply for a successful or failed turn.
func Response(intent types.Intent, state types.State, res conversation.Result) string {
	if !res.Ok {
		return errorResponse(intent, res.Reason)
	}

	main := mainResponse(intent, res)
	guide := guidance(state)
	switch {
	case main != "" && guide != "":
		return main + "\n\n" + guide
	case main != "":
		return main
	case guide != "":
		return guide
	}
	return "I'm here to help! What would you like me to do?"
}

func mainResponse(intent types.Intent, res conversation.Result) string {
	switch intent {
	case types.IntentLoadEmail:
		return loadResponse(res)
	case types.IntentExtractInfo:
		return infoResponse(pick(extractTemplates), res.Info)
	case types.IntentDraftReply:
		return draftResponse(res.Draft, res.Tone)
	case types.IntentRefineDraft:
		return pick(refineTemplates) + "\n\n" + res.Draft
	case types.IntentSaveDraft:
		where := res.SavedTo
		if where == "" {
			where = "the default location"
		}
		return fmt.Sprintf(pick(saveTemplates), where)
	case types.IntentGeneralHelp:
		return Help()
	case types.IntentContinueWorkflow:
		// Show whatever the continued step produced.
		switch {
		case res.Draft != "":
			return draftResponse(res.Draft, "")
		case res.Info != nil:
			return infoResponse(pick(extractTemplates), res.Info)
		}
		return ""
	case types.IntentDeclineOffer:
		return "No problem."
	case types.IntentViewSessionHistory:
		return historyResponse(res.Sessions)
	case types.IntentViewSpecificSession:
		return sessionResponse(res.Session)
	}
	return ""
}

func loadResponse(res conversation.Result) string {
	var emailInfo, summary string
	if res.Info != nil {
		sender, subject := res.Info.SenderName, res.Info.Subject
		switch {
		case sender != "" && subject != "":
			emailInfo = fmt.Sprintf(" from %s about %s", sender, subject)
		case sender != "":
			emailInfo = " from " + sender
		case subject != "":
			emailInfo = " about " + subject
		}
		if res.Info.Summary != "" {
			summary = "I've also extracted the key information. Here's a quick summary: " + res.Info.Summary
		}
	}
	return strings.TrimSpace(fmt.Sprintf(pick(loadTemplates), emailInfo, summary))
}

func infoResponse(header string, info *types.ExtractedInfo) string {
	if info == nil {
		return header
	}
	var lines []string
	if info.SenderName != "" {
		lines = append(lines, "From: "+info.SenderName)
	}
	if info.ReceiverName != "" {
		lines = append(lines, "To: "+info.ReceiverName)
	}
	if info.Subject != "" {
		lines = append(lines, "Subject: "+info.Subject)
	}
	if info.SenderContact != "" {
		lines = append(lines, "Sender contact: "+info.SenderContact)
	}
	if info.ReceiverContact != "" {
		lines = append(lines, "Receiver contact: "+info.ReceiverContact)
	}
	if info.Summary != "" {
		lines = append(lines, "Summary: "+info.Summary)
	}
	if len(lines) == 0 {
		return header
	}
	return header + "\n\n" + strings.Join(lines, "\n")
}

func draftResponse(draft, tone string) string {
	var toneInfo string
	if tone != "" {
		var ok bool
		if toneInfo, ok = toneClauses[tone]; !ok {
			toneInfo = fmt.Sprintf(" in a %s tone", tone)
		}
	}
	return fmt.Sprintf(pick(draftTemplates), toneInfo) + "\n\n" + draft
}

func historyResponse(sessions []types.SessionSummary) string {
	if len(sessions) == 0 {
		return "We haven't completed any email sessions yet. Share an email and I'll get to work!"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "We've worked through %d email session(s):\n", len(sessions))
	for _, s := range sessions {
		subject := s.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		fmt.Fprintf(&b, "  #%d  %s  [%s]\n", s.ID, subject, s.State.Title())
	}
	b.WriteString("Say \"show session N\" to revisit one.")
	return b.String()
}

func sessionResponse(s *types.EmailSession) string {
	if s == nil {
		return "I couldn't find that session."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Here's session #%d:\n", s.ID)
	if s.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", s.Subject)
	}
	if s.Sender != "" {
		fmt.Fprintf(&b, "From: %s\n", s.Sender)
	}
	if s.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", s.Summary)
	}
	if draft, ok := s.FinalDraft(); ok {
		fmt.Fprintf(&b, "\nFinal draft:\n%s\n", draft)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Help lists what the assistant can do.
func Help() string {
	return pick(helpTemplates) + "\n\n" + strings.Join(capabilities, "\n")
}
