package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"apicheck/internal/classgraph"
	apierrors "apicheck/internal/errors"
)

// PolicyRule is one [[rule]] table of an API.toml file
type PolicyRule struct {
	// Action is "include" or "exclude"
	Action string `toml:"action"`

	// Match is "prefix" (default) or "infix"
	Match string `toml:"match,omitempty"`

	// Pattern is a package or class name, dotted or slashed
	Pattern string `toml:"pattern"`

	// Comment documents why the rule exists
	Comment string `toml:"comment,omitempty"`
}

// PolicyFile represents the root structure of API.toml
type PolicyFile struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Rules are checked in order; the first match decides
	Rules []PolicyRule `toml:"rule"`
}

// ParsePolicyFile parses an API.toml file from the given path. A missing file
// is reported with an error wrapping os.ErrNotExist.
func ParsePolicyFile(filePath string) (*PolicyFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	var pf PolicyFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, apierrors.New(apierrors.ConfigInvalid,
			fmt.Sprintf("failed to parse %s", filePath), err)
	}

	// Validate version
	if pf.Version < 1 {
		pf.Version = 1 // Default to version 1
	}
	if pf.Version != 1 {
		return nil, apierrors.Newf(apierrors.ConfigInvalid, "%s: unsupported version %d", filePath, pf.Version)
	}

	for i, r := range pf.Rules {
		if r.Action != string(classgraph.Include) && r.Action != string(classgraph.Exclude) {
			return nil, apierrors.Newf(apierrors.ConfigInvalid,
				"%s: rule %d has action %q, want include or exclude", filePath, i+1, r.Action)
		}
		if r.Match != "" && r.Match != string(classgraph.MatchPrefix) && r.Match != string(classgraph.MatchInfix) {
			return nil, apierrors.Newf(apierrors.ConfigInvalid,
				"%s: rule %d has match %q, want prefix or infix", filePath, i+1, r.Match)
		}
		if r.Pattern == "" {
			return nil, apierrors.Newf(apierrors.ConfigInvalid, "%s: rule %d has no pattern", filePath, i+1)
		}
	}

	return &pf, nil
}

// NamingRules converts the file's rules for classgraph.NewNamingPolicy.
func (pf *PolicyFile) NamingRules() []classgraph.Rule {
	rules := make([]classgraph.Rule, 0, len(pf.Rules))
	for _, r := range pf.Rules {
		rules = append(rules, classgraph.Rule{
			Action:  classgraph.RuleAction(r.Action),
			Match:   classgraph.MatchKind(r.Match),
			Pattern: r.Pattern,
		})
	}
	return rules
}

// WritePolicyFile writes a PolicyFile to the given path
func WritePolicyFile(filePath string, pf *PolicyFile) error {
	data, err := toml.Marshal(pf)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(filePath), err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(filePath), err)
	}

	return nil
}

// CreateExamplePolicyFile creates an example API.toml file
func CreateExamplePolicyFile(filePath string) error {
	example := &PolicyFile{
		Version: 1,
		Rules: []PolicyRule{
			{Action: "exclude", Match: "infix", Pattern: "/internal/", Comment: "implementation packages"},
			{Action: "include", Pattern: "org.example.api", Comment: "published API"},
		},
	}

	return WritePolicyFile(filePath, example)
}
