package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"apicheck/internal/breaking"
	"apicheck/internal/storage"
)

var (
	compareFormat        string
	compareIncludeMinor  bool
	compareBaseline      string
	compareNoBaseline    bool
	compareWriteBaseline bool
	compareExportDB      string
	compareColor         string
	comparePolicy        policyFlags
)

var compareCmd = &cobra.Command{
	Use:   "compare <before> <after>",
	Short: "Compare the public API of two distributions",
	Long: `Compare the public binary API of two unpacked distributions.

Each distribution is read from the jars in its library directories
(lib/ and lib/plugins/ by default). Classes are compared by name; for every
class present in both, the superclass, implemented interfaces, visible
methods and visible fields are compared.

Removals and superclass changes are breaking unless accepted in the
baseline (.apicheck/accepted.toml). The command exits with status 1 when
unaccepted breaking changes remain.

Examples:
  apicheck compare dist-1.4 dist-1.5
  apicheck compare dist-1.4 dist-1.5 --format=json
  apicheck compare dist-1.4 dist-1.5 --exclude-infix=/impl/
  apicheck compare dist-1.4 dist-1.5 --write-baseline
  apicheck compare dist-1.4 dist-1.5 --export-db=.apicheck/runs.db`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareFormat, "format", "", "Output format (human, json, yaml); defaults to report.format")
	compareCmd.Flags().BoolVar(&compareIncludeMinor, "include-minor", true, "Include non-breaking changes; defaults to report.includeMinor")
	compareCmd.Flags().StringVar(&compareBaseline, "baseline", "", "Accepted changes file (default baseline.path)")
	compareCmd.Flags().BoolVar(&compareNoBaseline, "no-baseline", false, "Ignore the accepted changes file")
	compareCmd.Flags().BoolVar(&compareWriteBaseline, "write-baseline", false, "Accept all current breaking changes into the baseline and exit")
	compareCmd.Flags().StringVar(&compareExportDB, "export-db", "", "Store the result in this SQLite database")
	compareCmd.Flags().StringVar(&compareColor, "color", "", "Color human output (auto, always, never); defaults to report.color")
	comparePolicy.register(compareCmd)

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx, cancel := newContext()
	defer cancel()

	format := OutputFormat(cfg.Report.Format)
	if compareFormat != "" {
		format = OutputFormat(compareFormat)
	}
	includeMinor := cfg.Report.IncludeMinor
	if cmd.Flags().Changed("include-minor") {
		includeMinor = compareIncludeMinor
	}
	colorMode := cfg.Report.Color
	if compareColor != "" {
		colorMode = compareColor
	}

	baselinePath := cfg.BaselinePath(workDir)
	if compareBaseline != "" {
		baselinePath = compareBaseline
	}
	var baseline *breaking.Baseline
	if !compareNoBaseline && baselinePath != "" {
		b, err := breaking.LoadBaseline(baselinePath)
		if err != nil {
			return err
		}
		baseline = b
		logger.Debug("Loaded baseline", "path", baselinePath, "accepted", len(b.Accepted))
	}

	loader, err := newLoader(&comparePolicy)
	if err != nil {
		return err
	}
	analyzer := breaking.NewAnalyzer(loader, logger)

	opts := breaking.CompareOptions{
		BeforeRoot:   args[0],
		AfterRoot:    args[1],
		IncludeMinor: includeMinor || compareWriteBaseline,
		Baseline:     baseline,
	}
	result, err := analyzer.Compare(ctx, opts)
	if err != nil {
		return err
	}

	if compareWriteBaseline {
		if baselinePath == "" {
			return fmt.Errorf("no baseline path configured; pass --baseline")
		}
		next := breaking.BaselineFromChanges(result.Changes, baseline)
		if err := next.Save(baselinePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Accepted %d breaking changes into %s\n", len(next.Accepted), baselinePath)
		return nil
	}

	resp := &CompareResponseCLI{CompareResult: *result}
	if compareExportDB != "" {
		id, err := exportRun(compareExportDB, result)
		if err != nil {
			return err
		}
		resp.RunID = id
	}

	styles = newReportStyles(cmd.OutOrStdout(), useColor(colorMode, cmd.OutOrStdout()))
	output, err := FormatResponse(resp, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	logger.Info("Comparison completed",
		"changes", result.Summary.TotalChanges,
		"breaking", result.Summary.BreakingChanges,
		"duration", time.Since(start).Milliseconds(),
	)

	if result.HasBreakingChanges() {
		return errBreakingChanges
	}
	return nil
}

func exportRun(dbPath string, result *breaking.CompareResult) (string, error) {
	db, err := storage.Open(dbPath, logger)
	if err != nil {
		return "", fmt.Errorf("opening export database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(result)
	if err != nil {
		return "", fmt.Errorf("exporting comparison: %w", err)
	}
	logger.Debug("Exported comparison", "db", dbPath, "run", id)
	return id, nil
}
