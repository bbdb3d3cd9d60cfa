package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"eassistant/internal/agent"
	"eassistant/internal/config"
	"eassistant/internal/conversation"
	"eassistant/internal/display"
	"eassistant/internal/intent"
	"eassistant/internal/llm"
	"eassistant/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	configPath  string
	verboseFlag bool

	cfg       *config.Config
	store     *session.Store
	assistant *agent.Agent
)

var rootCmd = &cobra.Command{
	Use:   "eassistant",
	Short: "eassistant - Conversational email assistant",
	Long: `Load an email, extract the key facts, draft and refine a reply, and
save the result locally or to S3. All driven by plain conversation.

Running with no subcommand starts the interactive chat shell.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		if verboseFlag {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		// Skip setup for commands that run without config or assistant
		switch cmd.Name() {
		case "help", "version":
			return nil
		case "init":
			if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
				return nil
			}
		case "config":
			// Parent command (shows help)
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if !verboseFlag && cfg.LogLevel != "" {
			if lvl, perr := zerolog.ParseLevel(cfg.LogLevel); perr == nil {
				zerolog.SetGlobalLevel(lvl)
			}
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		// config show needs the config but not a live assistant
		if cmd.Name() == "show" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		return buildAssistant()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
	RunE: runChat,
}

// buildAssistant wires the classifier, state machine, operations and
// session store. A model that fails to construct degrades to rule-only
// classification instead of aborting startup.
func buildAssistant() error {
	var (
		resolver intent.Resolver
		proc     *llm.Processor
	)
	client, err := llm.New(llm.Options{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
	})
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.Provider).
			Msg("model unavailable, classification falls back to rules only")
	} else {
		proc = llm.NewProcessor(client)
		resolver = intent.NewLLMResolver(client)
	}

	store, err = session.Open()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	cc := conversation.NewContext(cfg.HistoryLimit)
	machine := conversation.NewMachine(cc, store)
	ops := agent.NewLLMOperations(proc, cfg.S3Bucket, cfg.DraftsDir)
	assistant = agent.New(intent.NewClassifier(resolver), machine, ops, store)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: auto-discover)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		display.ErrorMsg("%v", err)
		os.Exit(1)
	}
}
