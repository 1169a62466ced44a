package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"apicheck/internal/config"
	"apicheck/internal/slogutil"
	"apicheck/internal/version"
)

var (
	verbosity int
	quiet     bool
	logFormat string
	logPath   string
	workDir   string
)

// Set up by PersistentPreRunE for every subcommand.
var (
	cfg        *config.Config
	cfgResult  *config.LoadResult
	logger     *slog.Logger
	logFileOut *os.File
)

var rootCmd = &cobra.Command{
	Use:   "apicheck",
	Short: "apicheck - binary API compatibility checker for Java distributions",
	Long: `apicheck compares the public binary API of two unpacked Java distributions
by reading the compiled class files in their lib/ and lib/plugins/ jars, and
reports added, removed and changed classes, supertypes, methods and fields.`,
	Version:           version.Info(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate("apicheck version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all logs")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (human, json); defaults to logging.format")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", ".", "Directory holding .apicheck/ and API.toml")
}

// setup loads configuration and builds the logger. Logging flags win over
// the logging section of the config.
func setup(cmd *cobra.Command, args []string) error {
	result, err := config.LoadConfig(workDir)
	if err != nil {
		return err
	}
	cfgResult = result
	cfg = result.Config

	level := slogutil.LevelFromString(cfg.Logging.Level)
	if verbosity > 0 || quiet {
		level = slogutil.LevelFromVerbosity(verbosity, quiet)
	}
	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}

	handler := slogutil.NewHandler(os.Stderr, format, level)
	if logPath != "" {
		fileHandler, f, err := slogutil.NewFileHandler(logPath, format, slog.LevelDebug)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		logFileOut = f
		handler = slogutil.NewTeeHandler(handler, fileHandler)
	}
	logger = slog.New(handler)

	if result.UsedDefaults {
		logger.Debug("No configuration file, using defaults", "workdir", workDir)
	} else {
		logger.Debug("Loaded configuration", "path", result.ConfigPath)
	}
	return nil
}

func closeLogFile() {
	if logFileOut != nil {
		_ = logFileOut.Close()
		logFileOut = nil
	}
}
