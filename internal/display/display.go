// Package display provides terminal formatting for eassistant output.
package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"eassistant/internal/agent"
	"eassistant/internal/types"
)

var (
	// Styles
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	Accent   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb"))
	Warn     = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
)

// StateDot returns a colored dot for a conversation state.
func StateDot(state types.State) string {
	switch state {
	case types.StateGreeting, types.StateWaitingForEmail:
		return Dim.Render("○")
	case types.StateReadyToSave, types.StateConversationComplete:
		return Success.Render("●")
	case types.StateErrorRecovery:
		return ErrStyle.Render("●")
	default:
		return Warn.Render("●")
	}
}

// StateBadge returns a colored dot plus the state title.
func StateBadge(state types.State) string {
	return fmt.Sprintf("%s %s", StateDot(state), Bold.Render(state.Title()))
}

// Banner prints the chat shell's opening lines.
func Banner(version string) {
	fmt.Println(Bold.Render("eassistant") + " " + Dim.Render(version))
	fmt.Println(Muted.Render(`Conversational email assistant. Type "help" for commands, "exit" to leave.`))
	fmt.Println()
}

// Prompt returns the styled input prompt for the chat loop.
func Prompt() string {
	return Bold.Render("you") + Muted.Render(" › ")
}

// Assistant prints a reply from the assistant, indented under its
// speaker label.
func Assistant(text string) {
	fmt.Println(Accent.Render("assistant") + Muted.Render(" ›"))
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Println("  " + line)
	}
	fmt.Println()
}

// Status prints the conversation status block.
func Status(s agent.Summary) {
	Header("Conversation status")
	fmt.Printf("  state      %s\n", StateBadge(s.State))
	if s.StartedAt != "" {
		fmt.Printf("  started    %s\n", Dim.Render(TimeAgo(s.StartedAt)))
	}
	fmt.Printf("  turns      %d  (%s, %s)\n",
		s.Metrics.Turns,
		Success.Render(fmt.Sprintf("%d ok", s.Metrics.Succeeded)),
		ErrStyle.Render(fmt.Sprintf("%d failed", s.Metrics.Failed)))
	fmt.Printf("  routing    %d by rules, %d by model\n", s.Metrics.RuleHits, s.Metrics.ResolverCalls)
	fmt.Printf("  email      %s\n", yesNo(s.HasEmail))
	if s.DraftCount > 0 {
		fmt.Printf("  drafts     %d version(s)\n", s.DraftCount)
	} else {
		fmt.Printf("  drafts     %s\n", Dim.Render("none"))
	}
	fmt.Printf("  archived   %d session(s)\n", s.ArchivedSessions)
}

func yesNo(v bool) string {
	if v {
		return Success.Render("loaded")
	}
	return Dim.Render("none")
}

// TimeAgo formats an ISO date string as a relative time.
func TimeAgo(isoDate string) string {
	if isoDate == "" {
		return ""
	}

	// Try multiple formats
	var t time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02 15:04:05", time.RFC3339Nano} {
		t, err = time.Parse(layout, isoDate)
		if err == nil {
			break
		}
	}
	if err != nil {
		return isoDate[:min(10, len(isoDate))]
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// Truncate shortens a string to maxLen, adding ellipsis if needed.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// SuccessMsg prints a green checkmark + message.
func SuccessMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(Success.Render("✓") + " " + msg)
}

// ErrorMsg prints a red X + message to stderr.
func ErrorMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, ErrStyle.Render("✗")+" "+msg)
}

// Header prints a section header.
func Header(title string) {
	fmt.Println(Bold.Render(title))
}

// SubHeader prints a dim subsection label.
func SubHeader(title string) {
	fmt.Println(Muted.Render(title))
}
