// Package main provides the kgviz CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/matsen/kgviz/internal/config"
	"github.com/matsen/kgviz/internal/logging"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// EnvLogLevel sets the diagnostic level when --log-level is not given.
const EnvLogLevel = "KGVIZ_LOG_LEVEL"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string
	configPath  string

	// logger receives diagnostics on stderr; set before any command runs.
	logger = logging.Discard()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kgviz",
	Short: "Interactive knowledge graph visualizer",
	Long: `kgviz turns JSON relation data into an interactive graph.

Input is either a flat list of relation records
  [{"head", "head_type", "relation", "tail", "tail_type"}, ...]
or a graph document
  {"nodes": [{"id", "source_file", "attributes"}], "edges": [{"from", "to", "label"}]}.

Records are validated, cleaned and normalized, assembled into a directed
graph, optionally limited to the highest-degree nodes, and labeled with
communities before rendering.

All commands output JSON by default; use --human for readable output.
Diagnostics go to stderr.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic level: debug, info, warn, error (default $"+EnvLogLevel+" or info)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default $"+config.EnvConfigPath+" or ~/.config/kgviz/config.yml)")
	rootCmd.Version = Version
}

// setup loads .env and builds the diagnostic logger.
func setup(cmd *cobra.Command, args []string) error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	level := logLevel
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}
	l, err := logging.New(os.Stderr, level)
	if err != nil {
		return configErr(err)
	}
	logger = l
	return nil
}

// loadSettings resolves and loads the effective settings.
func loadSettings() (config.Settings, string, error) {
	path := config.ResolvePath(configPath)
	s, err := config.Load(path)
	if err != nil {
		return config.Settings{}, path, configErr(fmt.Errorf("loading settings: %w", err))
	}
	if path != "" {
		logger.Debug("settings loaded", "path", path)
	}
	return s, path, nil
}

// withLogger returns the logger tagged with the command name.
func withLogger(cmd string) *log.Logger {
	return logger.With("cmd", cmd)
}
