package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask MESSAGE...",
	Short: "Send a single message and print the reply",
	Long: `Send one message through the assistant and print the reply.

Each invocation is a fresh conversation; use the chat shell for
multi-turn work.

Examples:
  eassistant ask "Load the email at ~/inbox/offer.txt"
  eassistant ask --json "what can you do?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		report := assistant.ProcessTurn(cmd.Context(), message)

		if askJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Println(report.Response)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Output the full turn report as JSON")
	rootCmd.AddCommand(askCmd)
}
