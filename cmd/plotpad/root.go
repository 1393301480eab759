package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/caffeineduck/plotpad/cadence"
	"github.com/caffeineduck/plotpad/state"
)

// logger carries diagnostics. Script output never goes here.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "plotpad [file]",
	Short: "Live-coding notebook for Go scripts that draw plots",
	Long: `plotpad - Edit a Go script and watch its plots update as you type.

Scripts run in an embedded Go interpreter. Calls to plot.Title, plot.XLim,
plot.YLim and plot.Plot are recorded while the script runs and drawn after
it finishes. The run cadence decides when the script runs:
  each-frame   every refresh
  on-interact  after each edit or key press
  on-compile   after every successful build (default)
  manual       only when asked

Without a subcommand, plotpad opens the terminal studio.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runStudio,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("state", "", "State file (default: user config dir)")
	rootCmd.PersistentFlags().StringP("mode", "m", "", "Run cadence: "+strings.Join(cadence.Names(), ", "))
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug diagnostics")
	rootCmd.PersistentFlags().String("log-file", "", "Write diagnostics to a file")

	addStudioFlags(rootCmd)
}

// setupLogging builds the diagnostics logger. The studio owns the terminal, so
// it only logs when a log file is given.
func setupLogging(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logFile, _ := cmd.Flags().GetString("log-file")

	if cmd == rootCmd && logFile == "" {
		logger = zap.NewNop()
		return nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

func stateStore(cmd *cobra.Command) (state.Store, error) {
	path, _ := cmd.Flags().GetString("state")
	if path == "" {
		p, err := state.DefaultPath()
		if err != nil {
			return state.Store{}, err
		}
		path = p
	}
	return state.Store{Path: path}, nil
}

// modeFlag returns the --mode value, or fallback when it was not given.
func modeFlag(cmd *cobra.Command, fallback cadence.Mode) (cadence.Mode, error) {
	raw, _ := cmd.Flags().GetString("mode")
	if raw == "" {
		return fallback, nil
	}
	return cadence.ParseMode(raw)
}
