package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"eassistant/internal/display"
	"eassistant/internal/respond"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat shell (the default command)",
	Long: `Start the interactive chat shell.

A few words are handled by the shell itself instead of the assistant:

  help, ?    show what the assistant can do
  status     show conversation state and counters
  reset      start a fresh conversation
  clear      clear the screen
  exit       leave (also: quit, bye, goodbye)`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	display.Banner(Version)
	display.Assistant(respond.Greeting())

	scanner := bufio.NewScanner(os.Stdin)
	// Pasted email exchanges can exceed the default 64KB token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(display.Prompt())
		if !scanner.Scan() {
			fmt.Println()
			display.Assistant("Goodbye! Thanks for using the email assistant.")
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		// Shell words are handled before classification.
		switch strings.ToLower(input) {
		case "exit", "quit", "bye", "goodbye":
			display.Assistant("Goodbye! Thanks for using the email assistant.")
			return nil
		case "help", "?":
			display.Assistant(respond.Help())
			continue
		case "status":
			display.Status(assistant.Summary())
			fmt.Println()
			continue
		case "reset":
			assistant.Reset()
			display.SuccessMsg("Conversation reset.")
			display.Assistant(respond.Greeting())
			continue
		case "clear":
			fmt.Print("\033[H\033[2J")
			continue
		}

		report := assistant.ProcessTurn(cmd.Context(), input)
		display.Assistant(report.Response)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
