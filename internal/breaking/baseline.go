package breaking

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	apierrors "apicheck/internal/errors"
)

// BaselineVersion is the current accepted-changes file format.
const BaselineVersion = 1

// AcceptedChange identifies one breaking change the project has signed off on.
// Class and Member use binary names and signatures; dotted class names are
// accepted on input.
type AcceptedChange struct {
	Kind       ChangeKind `toml:"kind"`
	SymbolKind SymbolKind `toml:"symbol_kind,omitempty"`
	Class      string     `toml:"class"`
	Member     string     `toml:"member,omitempty"`
	Reason     string     `toml:"reason,omitempty"`
}

// Baseline is the accepted-changes file, a TOML document of [[accepted]]
// tables.
type Baseline struct {
	Version  int              `toml:"version"`
	Accepted []AcceptedChange `toml:"accepted"`
}

// LoadBaseline reads a baseline file. A missing file yields an empty baseline.
func LoadBaseline(path string) (*Baseline, error) {
	var b Baseline
	if _, err := toml.DecodeFile(path, &b); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Baseline{Version: BaselineVersion}, nil
		}
		return nil, apierrors.New(apierrors.ConfigInvalid,
			fmt.Sprintf("failed to parse baseline %s", path), err)
	}
	if b.Version == 0 {
		b.Version = BaselineVersion
	}
	if b.Version != BaselineVersion {
		return nil, apierrors.Newf(apierrors.ConfigInvalid,
			"baseline %s has unsupported version %d", path, b.Version)
	}
	for i := range b.Accepted {
		a := &b.Accepted[i]
		a.Class = strings.ReplaceAll(strings.TrimSpace(a.Class), ".", "/")
		if a.Kind == "" || a.Class == "" {
			return nil, apierrors.Newf(apierrors.ConfigInvalid,
				"baseline %s entry %d needs kind and class", path, i+1)
		}
	}
	return &b, nil
}

// Match returns the baseline entry accepting c. A nil baseline accepts
// nothing and additions are never matched.
func (b *Baseline) Match(c APIChange) (AcceptedChange, bool) {
	if b == nil || c.Severity == SeverityNonBreaking {
		return AcceptedChange{}, false
	}
	for _, a := range b.Accepted {
		if a.Kind != c.Kind || a.Class != c.Class || a.Member != c.Member {
			continue
		}
		if a.SymbolKind != "" && a.SymbolKind != c.SymbolKind {
			continue
		}
		return a, true
	}
	return AcceptedChange{}, false
}

// BaselineFromChanges accepts every breaking change in changes, keeping the
// reasons already recorded in prev.
func BaselineFromChanges(changes []APIChange, prev *Baseline) *Baseline {
	b := &Baseline{Version: BaselineVersion}
	for _, c := range changes {
		if c.Severity == SeverityNonBreaking {
			continue
		}
		entry := AcceptedChange{Kind: c.Kind, SymbolKind: c.SymbolKind, Class: c.Class, Member: c.Member}
		if old, ok := prev.Match(APIChange{Kind: c.Kind, SymbolKind: c.SymbolKind, Class: c.Class, Member: c.Member, Severity: SeverityBreaking}); ok {
			entry.Reason = old.Reason
		}
		b.Accepted = append(b.Accepted, entry)
	}
	sort.SliceStable(b.Accepted, func(i, j int) bool {
		x, y := b.Accepted[i], b.Accepted[j]
		if x.Class != y.Class {
			return x.Class < y.Class
		}
		return x.Member < y.Member
	})
	return b
}

// Save writes the baseline to path, creating parent directories.
func (b *Baseline) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create baseline file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(b); err != nil {
		return fmt.Errorf("failed to encode baseline: %w", err)
	}
	return nil
}
