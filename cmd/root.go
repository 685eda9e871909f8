package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avelar/adapt/internal/config"
	"github.com/avelar/adapt/internal/engine"
	"github.com/avelar/adapt/internal/logging"
	"github.com/avelar/adapt/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Adaptive review and difficulty scheduling engine",
	Long: "Adapt schedules spaced-repetition reviews (SM-2 or FSRS), tracks per-topic\n" +
		"difficulty, enforces prerequisite dependencies, and builds prioritized\n" +
		"session queues.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ADAPT_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to JSON config file (overrides ADAPT_CONFIG env var)")
	rootCmd.PersistentFlags().String("log-mode", "dev", "Log output mode: dev or prod")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(difficultyCmd)
	rootCmd.AddCommand(suspendCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(precomputeCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then ADAPT_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openEngine wires config, store, logger, and engine for one command
// invocation. The returned cleanup closes everything.
func openEngine(cmd *cobra.Command) (*engine.Engine, *store.Store, *zap.Logger, func(), error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open store: %w", err)
	}

	mode, _ := cmd.Flags().GetString("log-mode")
	level, _ := cmd.Flags().GetString("log-level")
	log, err := logging.New(mode, level)
	if err != nil {
		st.Close()
		return nil, nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}

	eng, err := engine.New(cfg, st, log)
	if err != nil {
		st.Close()
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		_ = log.Sync()
		st.Close()
	}
	return eng, st, log, cleanup, nil
}
