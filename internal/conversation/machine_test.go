package conversation

import (
	"testing"

	"eassistant/internal/session"
	"eassistant/internal/types"
)

func newMachine(t *testing.T) (*Machine, *session.Store) {
	t.Helper()
	store, err := session.Open()
	if err != nil {
		t.Fatalf("session.Open error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewMachine(NewContext(0), store), store
}

func TestApply_GoldenPath(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)
	info := &types.ExtractedInfo{SenderName: "Alice", Subject: "Update", Summary: "Status."}

	steps := []struct {
		intent types.Intent
		res    Result
		want   types.State
	}{
		{types.IntentLoadEmail, Result{Ok: true, Email: "the email body"}, types.StateEmailLoaded},
		{types.IntentExtractInfo, Result{Ok: true, Info: info}, types.StateInfoExtracted},
		{types.IntentDraftReply, Result{Ok: true, Draft: "draft v1"}, types.StateDraftCreated},
		{types.IntentRefineDraft, Result{Ok: true, Draft: "draft v2"}, types.StateDraftRefined},
		{types.IntentSaveDraft, Result{Ok: true, SavedTo: "/tmp/d.txt"}, types.StateReadyToSave},
		{types.IntentSaveDraft, Result{Ok: true, SavedTo: "/tmp/d.txt"}, types.StateConversationComplete},
	}
	for i, step := range steps {
		if got := m.Apply(step.intent, step.res); got != step.want {
			t.Fatalf("step %d (%v): state = %v; want %v", i, step.intent, got, step.want)
		}
	}

	cc := m.Context()
	if cc.EmailContent() != "the email body" {
		t.Errorf("EmailContent = %q; want the loaded email", cc.EmailContent())
	}
	if got := cc.Info(); got == nil || got.Subject != "Update" {
		t.Errorf("Info = %+v; want extracted info", got)
	}
	if cc.DraftCount() != 2 {
		t.Errorf("DraftCount = %d; want 2", cc.DraftCount())
	}
	if draft, _ := cc.ActiveDraft(); draft != "draft v2" {
		t.Errorf("ActiveDraft = %q; want %q", draft, "draft v2")
	}
}

func TestApply_RefinementsGrowDraftSequence(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)

	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "body"})
	m.Apply(types.IntentDraftReply, Result{Ok: true, Draft: "v1"})
	for _, d := range []string{"v2", "v3", "v4"} {
		if got := m.Apply(types.IntentRefineDraft, Result{Ok: true, Draft: d}); got != types.StateDraftRefined {
			t.Fatalf("state after refine %q = %v; want StateDraftRefined", d, got)
		}
	}

	cc := m.Context()
	want := []string{"v1", "v2", "v3", "v4"}
	got := cc.Drafts()
	if len(got) != len(want) {
		t.Fatalf("Drafts = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Drafts[%d] = %q; want %q", i, got[i], want[i])
		}
	}
	if draft, _ := cc.ActiveDraft(); draft != "v4" {
		t.Errorf("ActiveDraft = %q; want %q", draft, "v4")
	}
}

func TestApply_FailureEntersErrorRecovery(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)

	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "body"})
	got := m.Apply(types.IntentDraftReply, Failure("model unavailable"))
	if got != types.StateErrorRecovery {
		t.Fatalf("state after failed draft = %v; want StateErrorRecovery", got)
	}

	// The loaded email must survive the failure so the user can retry.
	cc := m.Context()
	if cc.EmailContent() != "body" {
		t.Errorf("EmailContent = %q; want preserved email", cc.EmailContent())
	}
	if cc.LastError() != "model unavailable" {
		t.Errorf("LastError = %q; want %q", cc.LastError(), "model unavailable")
	}

	// Recovery: a successful retry leaves error recovery.
	got = m.Apply(types.IntentDraftReply, Result{Ok: true, Draft: "v1"})
	if got != types.StateDraftCreated {
		t.Errorf("state after retry = %v; want StateDraftCreated", got)
	}
	if cc.LastError() != "" {
		t.Errorf("LastError = %q; want cleared after success", cc.LastError())
	}
}

func TestApply_ReadOnlyNeverChangesState(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)
	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "body"})
	m.Apply(types.IntentDraftReply, Result{Ok: true, Draft: "v1"})

	readOnly := []types.Intent{
		types.IntentGeneralHelp,
		types.IntentClarificationNeeded,
		types.IntentViewSessionHistory,
		types.IntentViewSpecificSession,
	}
	for _, it := range readOnly {
		if got := m.Apply(it, Result{Ok: true}); got != types.StateDraftCreated {
			t.Errorf("Apply(%v, ok) moved state to %v", it, got)
		}
		// Even a failed read-only operation keeps the state.
		if got := m.Apply(it, Failure("not found")); got != types.StateDraftCreated {
			t.Errorf("Apply(%v, failure) moved state to %v", it, got)
		}
	}

	if cc := m.Context(); cc.DraftCount() != 1 {
		t.Errorf("DraftCount = %d after read-only intents; want 1", cc.DraftCount())
	}
}

func TestApply_InvalidTransitionIgnored(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)

	// REFINE_DRAFT is not in the greeting row.
	if got := m.Apply(types.IntentRefineDraft, Result{Ok: true, Draft: "v1"}); got != types.StateGreeting {
		t.Errorf("state = %v; want StateGreeting unchanged", got)
	}
	if m.Context().DraftCount() != 0 {
		t.Error("invalid transition must not commit a draft")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)

	tests := []struct {
		intent types.Intent
		want   bool
	}{
		{types.IntentLoadEmail, true},
		{types.IntentExtractInfo, true},
		{types.IntentDraftReply, false},
		{types.IntentRefineDraft, false},
		{types.IntentSaveDraft, false},
		{types.IntentContinueWorkflow, false},
		{types.IntentDeclineOffer, false},
		{types.IntentGeneralHelp, true},
		{types.IntentClarificationNeeded, true},
		{types.IntentViewSessionHistory, true},
		{types.IntentViewSpecificSession, true},
	}
	for _, tt := range tests {
		if got := m.Validate(tt.intent); got != tt.want {
			t.Errorf("Validate(%v) in greeting = %v; want %v", tt.intent, got, tt.want)
		}
	}
}

func TestValidIntents_OrderAndReadOnly(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)
	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "body"})
	m.Apply(types.IntentDraftReply, Result{Ok: true, Draft: "v1"})

	want := []types.Intent{
		types.IntentLoadEmail,
		types.IntentExtractInfo,
		types.IntentDraftReply,
		types.IntentRefineDraft,
		types.IntentSaveDraft,
		types.IntentContinueWorkflow,
		types.IntentDeclineOffer,
		types.IntentGeneralHelp,
		types.IntentClarificationNeeded,
		types.IntentViewSessionHistory,
		types.IntentViewSpecificSession,
	}
	got := m.ValidIntents()
	if len(got) != len(want) {
		t.Fatalf("ValidIntents returned %d intents; want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ValidIntents[%d] = %v; want %v", i, got[i], want[i])
		}
	}
}

func TestApply_NewEmailArchivesSavableSession(t *testing.T) {
	t.Parallel()
	m, store := newMachine(t)
	info := &types.ExtractedInfo{SenderName: "Alice", Subject: "Old Topic", Summary: "Old summary."}

	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "old email"})
	m.Apply(types.IntentExtractInfo, Result{Ok: true, Info: info})
	m.Apply(types.IntentDraftReply, Result{Ok: true, Draft: "old draft"})
	m.Apply(types.IntentSaveDraft, Result{Ok: true, SavedTo: "/tmp/old.txt"})
	if got := m.Context().State(); got != types.StateReadyToSave {
		t.Fatalf("setup state = %v; want StateReadyToSave", got)
	}

	// Loading a new email from a savable state archives the old session.
	if got := m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "new email"}); got != types.StateEmailLoaded {
		t.Fatalf("state = %v; want StateEmailLoaded", got)
	}

	if got := store.Count(); got != 1 {
		t.Fatalf("archived sessions = %d; want 1", got)
	}
	archived, err := store.Get(1)
	if err != nil {
		t.Fatalf("Get(1) error: %v", err)
	}
	if archived.Subject != "Old Topic" {
		t.Errorf("archived Subject = %q; want %q", archived.Subject, "Old Topic")
	}
	if archived.EmailContent != "old email" {
		t.Errorf("archived EmailContent = %q; want %q", archived.EmailContent, "old email")
	}
	if draft, _ := archived.FinalDraft(); draft != "old draft" {
		t.Errorf("archived FinalDraft = %q; want %q", draft, "old draft")
	}

	// The live context now belongs to the new email.
	cc := m.Context()
	if cc.EmailContent() != "new email" {
		t.Errorf("EmailContent = %q; want new email", cc.EmailContent())
	}
	if cc.HasInfo() || cc.DraftCount() != 0 {
		t.Error("new email must start with clean info and drafts")
	}
}

func TestApply_NewEmailDiscardsUnsavedDrafts(t *testing.T) {
	t.Parallel()
	m, store := newMachine(t)

	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "old email"})
	m.Apply(types.IntentDraftReply, Result{Ok: true, Draft: "unsaved"})
	if got := m.Context().State(); got != types.StateDraftCreated {
		t.Fatalf("setup state = %v; want StateDraftCreated", got)
	}

	// DRAFT_CREATED is not savable, so nothing is archived.
	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "new email"})
	if got := store.Count(); got != 0 {
		t.Errorf("archived sessions = %d; want 0", got)
	}
	if m.Context().DraftCount() != 0 {
		t.Error("unsaved drafts must be discarded for the new email")
	}
}

func TestApply_ArchiveSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()
	m, store := newMachine(t)
	info := &types.ExtractedInfo{Subject: "Frozen"}

	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "first"})
	m.Apply(types.IntentExtractInfo, Result{Ok: true, Info: info})
	m.Apply(types.IntentDraftReply, Result{Ok: true, Draft: "only draft"})
	m.Apply(types.IntentSaveDraft, Result{Ok: true})

	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "second"})
	m.Apply(types.IntentDraftReply, Result{Ok: true, Draft: "second draft"})

	archived, err := store.Get(1)
	if err != nil {
		t.Fatalf("Get(1) error: %v", err)
	}
	if archived.EmailContent != "first" {
		t.Errorf("archived EmailContent = %q; want %q", archived.EmailContent, "first")
	}
	if len(archived.Drafts) != 1 || archived.Drafts[0] != "only draft" {
		t.Errorf("archived Drafts = %v; want [only draft]", archived.Drafts)
	}
	if archived.Info == nil || archived.Info.Subject != "Frozen" {
		t.Errorf("archived Info = %+v; want the frozen snapshot", archived.Info)
	}
}

func TestApply_ViewSpecificSessionRepointsView(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)

	s := &types.EmailSession{ID: 7, Subject: "Archived"}
	m.Apply(types.IntentViewSpecificSession, Result{Ok: true, Session: s})

	got := m.Context().ViewedSession()
	if got == nil || got.ID != 7 {
		t.Errorf("ViewedSession = %+v; want session 7", got)
	}
	if m.Context().State() != types.StateGreeting {
		t.Errorf("state = %v; want StateGreeting unchanged", m.Context().State())
	}
}

func TestReset(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)

	m.Apply(types.IntentLoadEmail, Result{Ok: true, Email: "body"})
	m.Apply(types.IntentDraftReply, Result{Ok: true, Draft: "v1"})
	m.RecordUser("hello")

	m.Reset()

	cc := m.Context()
	if cc.State() != types.StateGreeting {
		t.Errorf("state after Reset = %v; want StateGreeting", cc.State())
	}
	if cc.HasEmail() || cc.DraftCount() != 0 {
		t.Error("Reset left email-scoped context")
	}
	if len(cc.History()) != 1 {
		t.Error("Reset must keep conversation history")
	}
}

func TestRecordUserAndAssistant(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t)

	m.RecordUser("hi")
	m.RecordAssistant("hello!")

	h := m.Context().History()
	if len(h) != 2 {
		t.Fatalf("history length = %d; want 2", len(h))
	}
	if h[0].Role != "user" || h[0].Content != "hi" {
		t.Errorf("h[0] = %+v; want user hi", h[0])
	}
	if h[1].Role != "assistant" || h[1].Content != "hello!" {
		t.Errorf("h[1] = %+v; want assistant hello!", h[1])
	}
}
