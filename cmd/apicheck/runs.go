package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"apicheck/internal/breaking"
	"apicheck/internal/config"
	"apicheck/internal/storage"
)

var (
	runsDB     string
	runsFormat string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect comparisons exported with compare --export-db",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored comparisons, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the changes of a stored comparison",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored comparison",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDB, "db", "", "Export database (default .apicheck/runs.db)")
	runsCmd.PersistentFlags().StringVar(&runsFormat, "format", "human", "Output format (human, json, yaml)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

// RunsResponseCLI is the CLI response for runs list and runs show
type RunsResponseCLI struct {
	Runs    []storage.RunRecord  `json:"runs,omitempty" yaml:"runs,omitempty"`
	Changes []breaking.APIChange `json:"changes,omitempty" yaml:"changes,omitempty"`
}

func openRunsDB() (*storage.DB, error) {
	path := runsDB
	if path == "" {
		path = filepath.Join(workDir, config.Dir, "runs.db")
	}
	return storage.Open(path, logger)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	db, err := openRunsDB()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Runs()
	if err != nil {
		return err
	}
	return printRuns(cmd, &RunsResponseCLI{Runs: runs})
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	db, err := openRunsDB()
	if err != nil {
		return err
	}
	defer db.Close()

	changes, err := db.Changes(args[0])
	if err != nil {
		return err
	}
	return printRuns(cmd, &RunsResponseCLI{Changes: changes})
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	db, err := openRunsDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteRun(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
	return nil
}

func printRuns(cmd *cobra.Command, resp *RunsResponseCLI) error {
	output, err := FormatResponse(resp, OutputFormat(runsFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func formatRunsHuman(resp *RunsResponseCLI) string {
	var sb strings.Builder
	if resp.Runs != nil {
		if len(resp.Runs) == 0 {
			sb.WriteString("No stored runs.\n")
		}
		for _, r := range resp.Runs {
			sb.WriteString(fmt.Sprintf("%s  %s  %s -> %s  breaking=%d accepted=%d additions=%d  %s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.BeforeRoot, r.AfterRoot,
				r.BreakingChanges, r.Warnings, r.Additions, strings.ToUpper(r.SemverAdvice)))
		}
		return sb.String()
	}
	if len(resp.Changes) == 0 {
		sb.WriteString("No changes stored for this run.\n")
	}
	for _, c := range resp.Changes {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", c.Severity, c.Description))
	}
	return sb.String()
}
