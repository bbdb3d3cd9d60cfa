package conversation

import (
	"fmt"
	"testing"
	"time"

	"eassistant/internal/types"
)

func TestNewContext_Defaults(t *testing.T) {
	t.Parallel()
	c := NewContext(0)

	if c.ID() == "" {
		t.Error("ID is empty")
	}
	if c.State() != types.StateGreeting {
		t.Errorf("State = %v; want StateGreeting", c.State())
	}
	if c.HasEmail() {
		t.Error("fresh context should not have an email")
	}
	if c.HasInfo() {
		t.Error("fresh context should not have info")
	}
	if c.historyLimit != DefaultHistoryLimit {
		t.Errorf("historyLimit = %d; want %d", c.historyLimit, DefaultHistoryLimit)
	}
	if _, err := time.Parse(time.RFC3339, c.StartedAt()); err != nil {
		t.Errorf("StartedAt = %q is not RFC3339: %v", c.StartedAt(), err)
	}
}

func TestAppendHistory_Eviction(t *testing.T) {
	t.Parallel()
	c := NewContext(3)

	for i := 0; i < 5; i++ {
		c.appendHistory("user", fmt.Sprintf("message %d", i))
	}

	h := c.History()
	if len(h) != 3 {
		t.Fatalf("history length = %d; want 3", len(h))
	}
	if h[0].Content != "message 2" {
		t.Errorf("oldest retained = %q; want %q", h[0].Content, "message 2")
	}
	if h[2].Content != "message 4" {
		t.Errorf("newest = %q; want %q", h[2].Content, "message 4")
	}
}

func TestRecentHistory(t *testing.T) {
	t.Parallel()
	c := NewContext(10)
	for i := 0; i < 4; i++ {
		c.appendHistory("user", fmt.Sprintf("m%d", i))
	}

	recent := c.RecentHistory(2)
	if len(recent) != 2 {
		t.Fatalf("RecentHistory(2) length = %d; want 2", len(recent))
	}
	if recent[0].Content != "m2" || recent[1].Content != "m3" {
		t.Errorf("RecentHistory(2) = %q, %q; want m2, m3", recent[0].Content, recent[1].Content)
	}

	if got := c.RecentHistory(100); len(got) != 4 {
		t.Errorf("RecentHistory(100) length = %d; want 4", len(got))
	}
	if got := c.RecentHistory(0); got != nil {
		t.Errorf("RecentHistory(0) = %v; want nil", got)
	}
}

func TestGetters_ReturnCopies(t *testing.T) {
	t.Parallel()
	c := NewContext(10)
	c.drafts = []string{"original"}
	c.info = &types.ExtractedInfo{Subject: "original"}
	c.appendHistory("user", "original")

	c.Drafts()[0] = "mutated"
	c.Info().Subject = "mutated"
	c.History()[0].Content = "mutated"

	if c.drafts[0] != "original" {
		t.Error("Drafts() exposed internal slice")
	}
	if c.info.Subject != "original" {
		t.Error("Info() exposed internal struct")
	}
	if c.history[0].Content != "original" {
		t.Error("History() exposed internal slice")
	}
}

func TestActiveDraft(t *testing.T) {
	t.Parallel()
	c := NewContext(10)

	if _, ok := c.ActiveDraft(); ok {
		t.Error("ActiveDraft on fresh context should report false")
	}

	c.drafts = []string{"v1", "v2"}
	draft, ok := c.ActiveDraft()
	if !ok {
		t.Fatal("ActiveDraft should report true")
	}
	if draft != "v2" {
		t.Errorf("ActiveDraft = %q; want %q", draft, "v2")
	}
}

func TestResetEmail_KeepsHistory(t *testing.T) {
	t.Parallel()
	c := NewContext(10)
	c.emailContent = "body"
	c.info = &types.ExtractedInfo{Subject: "s"}
	c.drafts = []string{"v1"}
	c.viewedSession = &types.EmailSession{ID: 1}
	c.lastError = "boom"
	c.appendHistory("user", "hello")

	c.resetEmail()

	if c.HasEmail() || c.HasInfo() || c.DraftCount() != 0 {
		t.Error("resetEmail left email-scoped fields populated")
	}
	if c.ViewedSession() != nil {
		t.Error("resetEmail left viewedSession")
	}
	if c.LastError() != "" {
		t.Error("resetEmail left lastError")
	}
	if len(c.History()) != 1 {
		t.Error("resetEmail must not clear conversation history")
	}
}
