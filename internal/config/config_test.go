package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"apicheck/internal/distro"
	apierrors "apicheck/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Check version
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}

	// Check layout matches the stock distribution layout
	if len(cfg.Layout.LibDirs) != 2 {
		t.Fatalf("len(LibDirs) = %d, want 2", len(cfg.Layout.LibDirs))
	}
	if cfg.Layout.LibDirs[1].Path != "lib/plugins" || !cfg.Layout.LibDirs[1].Required {
		t.Errorf("LibDirs[1] = %+v, want required lib/plugins", cfg.Layout.LibDirs[1])
	}

	// Check report and logging
	if cfg.Report.Format != "human" {
		t.Errorf("Report.Format = %q, want %q", cfg.Report.Format, "human")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"version 2 unsupported", func(c *Config) { c.Version = 2 }, "version"},
		{"version 0 unsupported", func(c *Config) { c.Version = 0 }, "version"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad report format", func(c *Config) { c.Report.Format = "xml" }, "report.format"},
		{"bad color", func(c *Config) { c.Report.Color = "sometimes" }, "report.color"},
		{"no lib dirs", func(c *Config) { c.Layout.LibDirs = nil }, "layout.libDirs"},
		{"empty lib dir", func(c *Config) { c.Layout.LibDirs[0].Path = "" }, "layout.libDirs[0].path"},
		{"absolute lib dir", func(c *Config) { c.Layout.LibDirs[0].Path = "/opt/lib" }, "layout.libDirs[0].path"},
		{"escaping lib dir", func(c *Config) { c.Layout.LibDirs[1].Path = "../lib" }, "layout.libDirs[1].path"},
		{"empty include", func(c *Config) { c.Policy.Include = []string{""} }, "policy.include[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() returned unexpected error: %v", err)
				}
				return
			}

			// Check error type
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error type = %T, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q (%s)", cfgErr.Field, tt.wantField, cfgErr.Message)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{
		Field:   "version",
		Message: "unsupported config version 99",
	}

	got := err.Error()
	want := "config error in field 'version': unsupported config version 99"

	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	// Create a temp directory without config
	tmpDir := t.TempDir()
	t.Setenv("APICHECK_CONFIG_PATH", "")

	result, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !result.UsedDefaults {
		t.Error("UsedDefaults should be true when no config file exists")
	}
	if result.ConfigPath != "" {
		t.Errorf("ConfigPath = %q, want empty string", result.ConfigPath)
	}
	if len(result.Config.Layout.LibDirs) != 2 {
		t.Errorf("LibDirs = %+v, want defaults", result.Config.Layout.LibDirs)
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	cfgDir := filepath.Join(dir, Dir)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("Failed to create %s dir: %v", Dir, err)
	}
	path := filepath.Join(cfgDir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("APICHECK_CONFIG_PATH", "")
	path := writeConfig(t, tmpDir, `{
		"version": 1,
		"layout": {"libDirs": [{"path": "jars", "required": true}]},
		"policy": {"include": ["org.example"], "excludeInfixes": ["/internal/"]},
		"logging": {"level": "debug"}
	}`)

	result, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg := result.Config

	if result.UsedDefaults || result.ConfigPath != path {
		t.Errorf("result = %+v, want loaded from %s", result, path)
	}
	if len(cfg.Layout.LibDirs) != 1 || cfg.Layout.LibDirs[0].Path != "jars" {
		t.Errorf("LibDirs = %+v", cfg.Layout.LibDirs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Keys absent from the file keep their defaults
	if cfg.Report.Format != "human" {
		t.Errorf("Report.Format = %q, want human", cfg.Report.Format)
	}

	policy, err := cfg.NamingPolicy(tmpDir)
	if err != nil {
		t.Fatalf("NamingPolicy() error = %v", err)
	}
	if !policy.Allows("org/example/Api") || policy.Allows("org/example/internal/Impl") || policy.Allows("com/other/X") {
		t.Errorf("policy rules = %+v", policy.Rules())
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("APICHECK_CONFIG_PATH", "")
	t.Setenv("APICHECK_LOGGING_LEVEL", "error")
	t.Setenv("APICHECK_REPORT_FORMAT", "json")
	t.Setenv("APICHECK_POLICY_INCLUDE", "org.a,org.b")

	result, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg := result.Config

	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
	if cfg.Report.Format != "json" {
		t.Errorf("Report.Format = %q, want json", cfg.Report.Format)
	}
	if len(cfg.Policy.Include) != 2 || cfg.Policy.Include[1] != "org.b" {
		t.Errorf("Policy.Include = %v, want [org.a org.b]", cfg.Policy.Include)
	}
}

func TestLoadConfig_EnvConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.json")
	if err := os.WriteFile(configPath, []byte(`{"version": 1, "report": {"format": "yaml"}}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("APICHECK_CONFIG_PATH", configPath)

	result, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if result.ConfigPath != configPath {
		t.Errorf("ConfigPath = %q, want %q", result.ConfigPath, configPath)
	}
	if result.Config.Report.Format != "yaml" {
		t.Errorf("Report.Format = %q, want yaml", result.Config.Report.Format)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"version": `},
		{"fails validation", `{"version": 1, "logging": {"level": "chatty"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Setenv("APICHECK_CONFIG_PATH", "")
			writeConfig(t, tmpDir, tt.content)

			_, err := LoadConfig(tmpDir)
			if apierrors.CodeOf(err) != apierrors.ConfigInvalid {
				t.Errorf("CodeOf(err) = %v, want %v (%v)", apierrors.CodeOf(err), apierrors.ConfigInvalid, err)
			}
		})
	}
}

func TestConfig_Save(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("APICHECK_CONFIG_PATH", "")

	cfg := DefaultConfig()
	cfg.Policy.ExcludePrefixes = []string{"org/example/impl"}

	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	result, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got := result.Config.Policy.ExcludePrefixes; len(got) != 1 || got[0] != "org/example/impl" {
		t.Errorf("ExcludePrefixes = %v after round trip", got)
	}
}

func TestConfig_DistroLayout(t *testing.T) {
	layout := DefaultConfig().DistroLayout()
	want := distro.DefaultLayout()

	if len(layout.LibDirs) != len(want.LibDirs) {
		t.Fatalf("LibDirs = %+v, want %+v", layout.LibDirs, want.LibDirs)
	}
	for i := range want.LibDirs {
		if layout.LibDirs[i] != want.LibDirs[i] {
			t.Errorf("LibDirs[%d] = %+v, want %+v", i, layout.LibDirs[i], want.LibDirs[i])
		}
	}
}

func TestConfig_BaselinePath(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.BaselinePath("/work"); got != filepath.Join("/work", ".apicheck", "accepted.toml") {
		t.Errorf("BaselinePath() = %q", got)
	}
	cfg.Baseline.Path = ""
	if got := cfg.BaselinePath("/work"); got != "" {
		t.Errorf("BaselinePath() = %q, want empty", got)
	}
}
