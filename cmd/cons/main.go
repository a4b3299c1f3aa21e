// Package main implements the cons CLI: a local-first personal
// knowledge base over a property graph on SQLite.
//
// Entry point and global state live here; individual commands are
// split across cmd_*.go files by concern (capture, retrieval,
// aliases, hierarchy).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cons/internal/config"
	"cons/internal/logging"
	"cons/internal/service"
	"cons/internal/store"
)

var (
	verbose bool
	dbPath  string
	llmHost string

	logger *zap.Logger
)

// rootCmd is the base command. cons has no interactive mode: every
// invocation is a single operation against the local store.
var rootCmd = &cobra.Command{
	Use:   "cons",
	Short: "cons - a local-first personal knowledge base with AI-augmented retrieval",
	Long: `cons stores notes as a property graph: notes carry tags, tags relate to
each other through generic (is-a) and partitive (part-of) edges. Search
fuses full-text relevance with spreading activation over that graph.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.TimeKey = ""
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debug("command starting", zap.String("command", cmd.CommandPath()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Debug("command finished", zap.String("command", cmd.CommandPath()))
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the sqlite store (default: CONS_DB_PATH or ./cons.db)")
	rootCmd.PersistentFlags().StringVar(&llmHost, "llm-host", "", "LLM completion endpoint (default: LLM_HOST)")

	rootCmd.AddCommand(
		captureCmd,
		listCmd,
		searchCmd,
		graphSearchCmd,
		aliasCmd,
		hierarchyCmd,
	)
}

// openService opens the store at the effective db path and wraps it
// in a NoteService, rebuilding the FTS index if necessary.
func openService() (*service.NoteService, func(), error) {
	path := dbPath
	if path == "" {
		path = config.DBPath()
	}
	s, err := store.NewLocalStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	svc, err := service.New(s)
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("init service: %w", err)
	}
	return svc, func() { s.Close() }, nil
}

// effectiveLLMHost resolves the --llm-host flag over config.Endpoint().
func effectiveLLMHost() string {
	if llmHost != "" {
		return llmHost
	}
	return config.Endpoint().Host
}

// effectiveLLMModel resolves LLM_MODEL, defaulting to a name that
// makes a missing configuration obvious in logs rather than silently
// hitting an empty string.
func effectiveLLMModel() string {
	m := config.Endpoint().Model
	if m == "" {
		m = "default"
	}
	return m
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
