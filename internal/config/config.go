package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"apicheck/internal/classgraph"
	"apicheck/internal/distro"
	apierrors "apicheck/internal/errors"
)

// CurrentVersion is the config schema version this build understands.
const CurrentVersion = 1

// Dir is the per-project configuration directory.
const Dir = ".apicheck"

// Config represents the complete apicheck configuration
type Config struct {
	Version int `json:"version" mapstructure:"version" validate:"eq=1"`

	Layout   LayoutConfig   `json:"layout" mapstructure:"layout"`
	Policy   PolicyConfig   `json:"policy" mapstructure:"policy"`
	Baseline BaselineConfig `json:"baseline" mapstructure:"baseline"`
	Report   ReportConfig   `json:"report" mapstructure:"report"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// LayoutConfig describes where archives live inside a distribution
type LayoutConfig struct {
	LibDirs []LibDirConfig `json:"libDirs" mapstructure:"libDirs" validate:"required,min=1,dive"`
}

// LibDirConfig is one library directory relative to the distribution root
type LibDirConfig struct {
	Path     string `json:"path" mapstructure:"path" validate:"required,relpath"`
	Required bool   `json:"required" mapstructure:"required"`
}

// PolicyConfig selects which classes belong to the published API
type PolicyConfig struct {
	File            string   `json:"file" mapstructure:"file"`
	Include         []string `json:"include" mapstructure:"include" validate:"dive,required"`
	ExcludePrefixes []string `json:"excludePrefixes" mapstructure:"excludePrefixes" validate:"dive,required"`
	ExcludeInfixes  []string `json:"excludeInfixes" mapstructure:"excludeInfixes" validate:"dive,required"`
}

// BaselineConfig points at the accepted-changes file
type BaselineConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// ReportConfig contains report defaults
type ReportConfig struct {
	Format       string `json:"format" mapstructure:"format" validate:"oneof=human json yaml"`
	IncludeMinor bool   `json:"includeMinor" mapstructure:"includeMinor"`
	Color        string `json:"color" mapstructure:"color" validate:"oneof=auto always never"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" validate:"oneof=human json"`
	Level  string `json:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Layout: LayoutConfig{
			LibDirs: []LibDirConfig{
				{Path: "lib", Required: true},
				{Path: "lib/plugins", Required: true},
			},
		},
		Policy: PolicyConfig{
			File:            "API.toml",
			Include:         []string{},
			ExcludePrefixes: []string{},
			ExcludeInfixes:  []string{},
		},
		Baseline: BaselineConfig{
			Path: filepath.Join(Dir, "accepted.toml"),
		},
		Report: ReportConfig{
			Format:       "human",
			IncludeMinor: true,
			Color:        "auto",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// LoadResult contains the loaded config and where it came from
type LoadResult struct {
	Config       *Config
	ConfigPath   string // Empty when defaults were used
	UsedDefaults bool
}

// EnvPrefix prefixes every environment override, e.g. APICHECK_LOGGING_LEVEL.
const EnvPrefix = "APICHECK"

// LoadConfig loads configuration from .apicheck/config.json under workDir,
// or from APICHECK_CONFIG_PATH when set. Environment variables override file
// values; a missing file yields the defaults.
func LoadConfig(workDir string) (*LoadResult, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	result := &LoadResult{}
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_PATH"); explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(filepath.Join(workDir, Dir))
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apierrors.New(apierrors.ConfigInvalid, "failed to read configuration", err)
		}
		result.UsedDefaults = true
	} else {
		result.ConfigPath = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apierrors.New(apierrors.ConfigInvalid, "failed to decode configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, apierrors.New(apierrors.ConfigInvalid, "invalid configuration", err)
	}

	result.Config = &cfg
	return result, nil
}

// setDefaults registers every leaf of defaults with viper so AutomaticEnv
// can override it.
func setDefaults(v *viper.Viper, d *Config) {
	libDirs := make([]map[string]interface{}, len(d.Layout.LibDirs))
	for i, dir := range d.Layout.LibDirs {
		libDirs[i] = map[string]interface{}{"path": dir.Path, "required": dir.Required}
	}

	v.SetDefault("version", d.Version)
	v.SetDefault("layout.libDirs", libDirs)
	v.SetDefault("policy.file", d.Policy.File)
	v.SetDefault("policy.include", d.Policy.Include)
	v.SetDefault("policy.excludePrefixes", d.Policy.ExcludePrefixes)
	v.SetDefault("policy.excludeInfixes", d.Policy.ExcludeInfixes)
	v.SetDefault("baseline.path", d.Baseline.Path)
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("report.includeMinor", d.Report.IncludeMinor)
	v.SetDefault("report.color", d.Report.Color)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Save writes the configuration to .apicheck/config.json
func (c *Config) Save(workDir string) error {
	dir := filepath.Join(workDir, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", Dir, err)
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// DistroLayout converts the layout section for the distribution loader.
func (c *Config) DistroLayout() distro.Layout {
	layout := distro.Layout{LibDirs: make([]distro.LibDir, 0, len(c.Layout.LibDirs))}
	for _, d := range c.Layout.LibDirs {
		layout.LibDirs = append(layout.LibDirs, distro.LibDir{
			Path:     filepath.FromSlash(d.Path),
			Required: d.Required,
		})
	}
	return layout
}

// NamingPolicy builds the class naming policy. Rules from the policy file
// (resolved against workDir, optional) come first, followed by the list
// settings with exclusions ahead of inclusions.
func (c *Config) NamingPolicy(workDir string) (classgraph.NamingPolicy, error) {
	var rules []classgraph.Rule
	if c.Policy.File != "" {
		path := c.Policy.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		pf, err := ParsePolicyFile(path)
		switch {
		case err == nil:
			rules = append(rules, pf.NamingRules()...)
		case errors.Is(err, os.ErrNotExist):
		default:
			return classgraph.NamingPolicy{}, err
		}
	}
	lists := classgraph.PolicyFromLists(c.Policy.Include, c.Policy.ExcludePrefixes, c.Policy.ExcludeInfixes)
	rules = append(rules, lists.Rules()...)
	return classgraph.NewNamingPolicy(rules...), nil
}

// BaselinePath resolves the baseline path against workDir.
func (c *Config) BaselinePath(workDir string) string {
	if c.Baseline.Path == "" || filepath.IsAbs(c.Baseline.Path) {
		return c.Baseline.Path
	}
	return filepath.Join(workDir, c.Baseline.Path)
}
