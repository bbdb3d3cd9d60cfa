package respond

import (
	"strings"
	"testing"

	"eassistant/internal/conversation"
	"eassistant/internal/types"
)

// containsAny passes when got contains at least one of the options.
// Replies are picked at random, so tests assert template membership
// rather than exact text.
func containsAny(t *testing.T, got string, options []string) {
	t.Helper()
	for _, o := range options {
		if strings.Contains(got, o) {
			return
		}
	}
	t.Errorf("%q matches none of the expected templates", got)
}

var testInfo = &types.ExtractedInfo{
	SenderName:      "Alice",
	ReceiverName:    "Bob",
	SenderContact:   "alice@example.com",
	ReceiverContact: "bob@example.com",
	Subject:         "Q3 numbers",
	Summary:         "Alice asks Bob for the Q3 numbers.",
}

func TestGreeting(t *testing.T) {
	t.Parallel()
	for range 5 {
		containsAny(t, Greeting(), greetings)
	}
}

func TestResponse_FailureCarriesReason(t *testing.T) {
	t.Parallel()
	got := Response(types.IntentDraftReply, types.StateErrorRecovery, conversation.Failure("model unavailable"))
	if !strings.Contains(got, "Error details: model unavailable") {
		t.Errorf("response missing failure reason: %q", got)
	}
	containsAny(t, got, errorTemplates[types.IntentDraftReply])
}

func TestResponse_FailureWithoutIntentTemplate(t *testing.T) {
	t.Parallel()
	got := Response(types.IntentViewSpecificSession, types.StateEmailLoaded, conversation.Failure("session 99 not found"))
	if !strings.Contains(got, "Error details: session 99 not found") {
		t.Errorf("response missing failure reason: %q", got)
	}
	containsAny(t, got, generalErrorTemplates)
}

func TestResponse_Load(t *testing.T) {
	t.Parallel()
	res := conversation.Result{Ok: true, Email: "raw email", Info: testInfo}
	got := Response(types.IntentLoadEmail, types.StateEmailLoaded, res)

	if !strings.Contains(got, " from Alice about Q3 numbers") {
		t.Errorf("response missing sender and subject: %q", got)
	}
	if !strings.Contains(got, "Here's a quick summary: Alice asks Bob for the Q3 numbers.") {
		t.Errorf("response missing summary: %q", got)
	}
	containsAny(t, got, guidanceTemplates[types.StateEmailLoaded])
}

func TestResponse_LoadWithoutInfo(t *testing.T) {
	t.Parallel()
	got := Response(types.IntentLoadEmail, types.StateEmailLoaded, conversation.Result{Ok: true, Email: "raw"})
	if strings.Contains(got, " from ") || strings.Contains(got, " about ") {
		t.Errorf("response invents sender or subject: %q", got)
	}
}

func TestResponse_InfoLines(t *testing.T) {
	t.Parallel()
	got := Response(types.IntentExtractInfo, types.StateInfoExtracted, conversation.Result{Ok: true, Info: testInfo})

	for _, want := range []string{
		"From: Alice",
		"To: Bob",
		"Subject: Q3 numbers",
		"Sender contact: alice@example.com",
		"Receiver contact: bob@example.com",
		"Summary: Alice asks Bob for the Q3 numbers.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("response missing %q:\n%s", want, got)
		}
	}
	containsAny(t, got, extractTemplates)
}

func TestResponse_DraftTones(t *testing.T) {
	t.Parallel()
	draft := "Dear Alice,\n\nThe numbers are attached."

	got := Response(types.IntentDraftReply, types.StateDraftCreated, conversation.Result{Ok: true, Draft: draft, Tone: "formal"})
	if !strings.Contains(got, draft) {
		t.Errorf("response missing the draft: %q", got)
	}
	if !strings.Contains(got, " in a formal tone") {
		t.Errorf("response missing tone clause: %q", got)
	}

	// Unrecognized tones still read naturally.
	got = Response(types.IntentDraftReply, types.StateDraftCreated, conversation.Result{Ok: true, Draft: draft, Tone: "enthusiastic"})
	if !strings.Contains(got, " in a enthusiastic tone") {
		t.Errorf("response missing generic tone clause: %q", got)
	}
}

func TestResponse_Refine(t *testing.T) {
	t.Parallel()
	got := Response(types.IntentRefineDraft, types.StateDraftRefined, conversation.Result{Ok: true, Draft: "updated draft"})
	if !strings.Contains(got, "updated draft") {
		t.Errorf("response missing the refined draft: %q", got)
	}
	containsAny(t, got, refineTemplates)
}

func TestResponse_Save(t *testing.T) {
	t.Parallel()
	got := Response(types.IntentSaveDraft, types.StateReadyToSave, conversation.Result{Ok: true, SavedTo: "/tmp/reply.txt"})
	if !strings.Contains(got, "/tmp/reply.txt") {
		t.Errorf("response missing save location: %q", got)
	}

	got = Response(types.IntentSaveDraft, types.StateReadyToSave, conversation.Result{Ok: true})
	if !strings.Contains(got, "the default location") {
		t.Errorf("response missing default location wording: %q", got)
	}
}

func TestResponse_Decline(t *testing.T) {
	t.Parallel()
	got := Response(types.IntentDeclineOffer, types.StateEmailLoaded, conversation.OK())
	if !strings.Contains(got, "No problem.") {
		t.Errorf("response = %q; want a No problem acknowledgement", got)
	}
}

func TestResponse_ContinueShowsPayload(t *testing.T) {
	t.Parallel()
	got := Response(types.IntentContinueWorkflow, types.StateDraftCreated, conversation.Result{Ok: true, Draft: "continued draft"})
	if !strings.Contains(got, "continued draft") {
		t.Errorf("response missing the draft payload: %q", got)
	}

	got = Response(types.IntentContinueWorkflow, types.StateInfoExtracted, conversation.Result{Ok: true, Info: testInfo})
	if !strings.Contains(got, "Subject: Q3 numbers") {
		t.Errorf("response missing the info payload: %q", got)
	}

	// A bare continue still moves the conversation along.
	got = Response(types.IntentContinueWorkflow, types.StateReadyToSave, conversation.OK())
	containsAny(t, got, guidanceTemplates[types.StateReadyToSave])
}

func TestHistoryResponse(t *testing.T) {
	t.Parallel()
	got := historyResponse(nil)
	if !strings.Contains(got, "We haven't completed any email sessions yet") {
		t.Errorf("empty history response = %q", got)
	}

	got = historyResponse([]types.SessionSummary{
		{ID: 1, Subject: "Q3 numbers", State: types.StateConversationComplete},
		{ID: 2, Subject: "", State: types.StateReadyToSave},
	})
	for _, want := range []string{
		"2 email session(s)",
		"#1",
		"Q3 numbers",
		"[Conversation Complete]",
		"#2",
		"(no subject)",
		`Say "show session N"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("history response missing %q:\n%s", want, got)
		}
	}
}

func TestSessionResponse(t *testing.T) {
	t.Parallel()
	if got := sessionResponse(nil); got != "I couldn't find that session." {
		t.Errorf("sessionResponse(nil) = %q", got)
	}

	got := sessionResponse(&types.EmailSession{
		ID:      2,
		Subject: "Q3 numbers",
		Sender:  "Alice",
		Summary: "Alice asks Bob for the Q3 numbers.",
		Drafts:  []string{"first draft", "final draft text"},
	})
	for _, want := range []string{
		"session #2",
		"Subject: Q3 numbers",
		"From: Alice",
		"Final draft:\nfinal draft text",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("session response missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "first draft") {
		t.Errorf("session response shows an earlier draft:\n%s", got)
	}
}

func TestHelp(t *testing.T) {
	t.Parallel()
	got := Help()
	containsAny(t, got, helpTemplates)
	for _, line := range capabilities {
		if !strings.Contains(got, line) {
			t.Errorf("help missing %q", line)
		}
	}
}

func TestClarification(t *testing.T) {
	t.Parallel()
	got := Clarification(types.StateGreeting)
	containsAny(t, got, clarificationTemplates)
	if !strings.Contains(got, "For example, you could:") {
		t.Errorf("clarification missing examples: %q", got)
	}
	if !strings.Contains(got, "- Share an email you'd like me to process") {
		t.Errorf("clarification missing greeting hint: %q", got)
	}

	// States without curated hints get the bare ask.
	got = Clarification(types.StateErrorRecovery)
	if strings.Contains(got, "For example, you could:") {
		t.Errorf("clarification invents hints: %q", got)
	}
}

func TestMismatch(t *testing.T) {
	t.Parallel()
	got := Mismatch(types.StateDraftCreated)
	containsAny(t, got, mismatchTemplates)
	containsAny(t, got, guidanceTemplates[types.StateDraftCreated])
}
