package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"apicheck/internal/config"
)

var (
	configFormat string
	initForce    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage apicheck configuration",
	Long:  "View and manage apicheck configuration stored in .apicheck/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective apicheck configuration, after defaults and
APICHECK_* environment overrides are applied.

Examples:
  apicheck config show                # Pretty-print current config
  apicheck config show --format=json  # Raw JSON output`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default configuration and an example API.toml",
	Long: `Create .apicheck/config.json with default settings and an example
naming policy file in the working directory.`,
	RunE: runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (human, json, yaml)")
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing files")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string                 `json:"configPath,omitempty" yaml:"configPath,omitempty"`
	UsedDefaults bool                   `json:"usedDefaults" yaml:"usedDefaults"`
	Config       map[string]interface{} `json:"config" yaml:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if OutputFormat(configFormat) == FormatHuman {
		fmt.Fprint(out, formatConfigHuman(cfgResult))
		return nil
	}

	// Round-trip through JSON so YAML output keeps the JSON key names.
	data, err := json.Marshal(cfgResult.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var configMap map[string]interface{}
	if err := json.Unmarshal(data, &configMap); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	output, err := FormatResponse(&ConfigShowResponse{
		ConfigPath:   cfgResult.ConfigPath,
		UsedDefaults: cfgResult.UsedDefaults,
		Config:       configMap,
	}, OutputFormat(configFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, output)
	return nil
}

func formatConfigHuman(result *config.LoadResult) string {
	var sb strings.Builder
	c := result.Config
	d := config.DefaultConfig()

	sb.WriteString("apicheck configuration\n")
	sb.WriteString(strings.Repeat("─", 50) + "\n")
	if result.UsedDefaults {
		sb.WriteString("Source: defaults (no config file found)\n")
	} else {
		sb.WriteString(fmt.Sprintf("Source: %s\n", result.ConfigPath))
	}
	sb.WriteString("\n")

	section := func(name string, value, defaultValue interface{}) {
		modified := ""
		if !reflect.DeepEqual(value, defaultValue) {
			modified = fmt.Sprintf(" (default: %v)", defaultValue)
		}
		sb.WriteString(fmt.Sprintf("%s: %v%s\n", name, value, modified))
	}

	section("version", c.Version, d.Version)

	sb.WriteString("\nlayout:\n")
	for _, dir := range c.Layout.LibDirs {
		req := "optional"
		if dir.Required {
			req = "required"
		}
		sb.WriteString(fmt.Sprintf("  libDir: %s (%s)\n", dir.Path, req))
	}

	sb.WriteString("\npolicy:\n")
	section("  file", c.Policy.File, d.Policy.File)
	section("  include", c.Policy.Include, d.Policy.Include)
	section("  excludePrefixes", c.Policy.ExcludePrefixes, d.Policy.ExcludePrefixes)
	section("  excludeInfixes", c.Policy.ExcludeInfixes, d.Policy.ExcludeInfixes)

	sb.WriteString("\nbaseline:\n")
	section("  path", c.Baseline.Path, d.Baseline.Path)

	sb.WriteString("\nreport:\n")
	section("  format", c.Report.Format, d.Report.Format)
	section("  includeMinor", c.Report.IncludeMinor, d.Report.IncludeMinor)
	section("  color", c.Report.Color, d.Report.Color)

	sb.WriteString("\nlogging:\n")
	section("  format", c.Logging.Format, d.Logging.Format)
	section("  level", c.Logging.Level, d.Logging.Level)

	return sb.String()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(workDir, config.Dir, "config.json")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	c := config.DefaultConfig()
	if err := c.Save(workDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)

	policyPath := filepath.Join(workDir, c.Policy.File)
	if _, err := os.Stat(policyPath); err == nil && !initForce {
		logger.Info("Keeping existing policy file", "path", policyPath)
		return nil
	}
	if err := config.CreateExamplePolicyFile(policyPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", policyPath)
	return nil
}
