package breaking

import "apicheck/internal/classgraph"

// ChangeKind represents the type of API change
type ChangeKind string

const (
	ChangeRemoved           ChangeKind = "removed"            // Symbol was deleted
	ChangeAdded             ChangeKind = "added"              // New symbol added (non-breaking)
	ChangeSuperclassChanged ChangeKind = "superclass_changed" // Class extends a different type
)

// Severity indicates how breaking a change is
type Severity string

const (
	SeverityBreaking    Severity = "breaking"     // Will cause link or runtime errors for callers
	SeverityWarning     Severity = "warning"      // Breaking, but accepted in the baseline
	SeverityNonBreaking Severity = "non_breaking" // Safe change (additions)
)

// SymbolKind is what a change applies to.
type SymbolKind string

const (
	SymbolClass      SymbolKind = "class"
	SymbolInterface  SymbolKind = "interface"
	SymbolSupertype  SymbolKind = "supertype" // an implemented interface
	SymbolSuperclass SymbolKind = "superclass"
	SymbolMethod     SymbolKind = "method"
	SymbolField      SymbolKind = "field"
)

// APIChange represents a single change between two API versions
type APIChange struct {
	Kind         ChangeKind `json:"kind" yaml:"kind"`
	Severity     Severity   `json:"severity" yaml:"severity"`
	SymbolName   string     `json:"symbolName" yaml:"symbolName"` // Dotted display name, p.A or p.A#foo()V
	SymbolKind   SymbolKind `json:"symbolKind" yaml:"symbolKind"`
	Class        string     `json:"class" yaml:"class"`                     // Binary name of the owning class
	Member       string     `json:"member,omitempty" yaml:"member,omitempty"` // Signature or interface name
	Package      string     `json:"package" yaml:"package"`
	Description  string     `json:"description" yaml:"description"`
	OldValue     string     `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue     string     `json:"newValue,omitempty" yaml:"newValue,omitempty"`
	AffectsUsers bool       `json:"affectsUsers" yaml:"affectsUsers"` // True if external consumers are affected
	Accepted     bool       `json:"accepted,omitempty" yaml:"accepted,omitempty"`
	Reason       string     `json:"reason,omitempty" yaml:"reason,omitempty"` // Baseline justification
}

// CompareOptions configures the comparison behavior
type CompareOptions struct {
	BeforeRoot   string    // Unpacked distribution of the previous release
	AfterRoot    string    // Unpacked distribution of the candidate release
	IncludeMinor bool      // Include non-breaking changes in output
	Baseline     *Baseline // Accepted breaking changes, may be nil
}

// DefaultCompareOptions returns sensible defaults
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		IncludeMinor: true,
	}
}

// CompareResult contains the result of comparing two API versions
type CompareResult struct {
	Before             string      `json:"before" yaml:"before"`
	After              string      `json:"after" yaml:"after"`
	Changes            []APIChange `json:"changes" yaml:"changes"`
	Summary            *Summary    `json:"summary" yaml:"summary"`
	SemverAdvice       string      `json:"semverAdvice,omitempty" yaml:"semverAdvice,omitempty"` // "major", "minor", "patch"
	TotalBeforeClasses int         `json:"totalBeforeClasses" yaml:"totalBeforeClasses"`
	TotalAfterClasses  int         `json:"totalAfterClasses" yaml:"totalAfterClasses"`

	// Before and After registries, kept for reporters that render the surface.
	BeforeRegistry *classgraph.Registry `json:"-" yaml:"-"`
	AfterRegistry  *classgraph.Registry `json:"-" yaml:"-"`
}

// Summary provides an overview of the changes
type Summary struct {
	TotalChanges     int            `json:"totalChanges" yaml:"totalChanges"`
	BreakingChanges  int            `json:"breakingChanges" yaml:"breakingChanges"`
	Warnings         int            `json:"warnings" yaml:"warnings"`
	Additions        int            `json:"additions" yaml:"additions"`
	ClassesAdded     int            `json:"classesAdded" yaml:"classesAdded"`
	ClassesRemoved   int            `json:"classesRemoved" yaml:"classesRemoved"`
	ClassesChanged   int            `json:"classesChanged" yaml:"classesChanged"`
	ClassesUnchanged int            `json:"classesUnchanged" yaml:"classesUnchanged"`
	ByKind           map[string]int `json:"byKind" yaml:"byKind"`
	BySymbolKind     map[string]int `json:"bySymbolKind" yaml:"bySymbolKind"`
	ByPackage        map[string]int `json:"byPackage,omitempty" yaml:"byPackage,omitempty"`
}

// HasBreakingChanges returns true if there are any breaking changes
func (r *CompareResult) HasBreakingChanges() bool {
	return r.Summary != nil && r.Summary.BreakingChanges > 0
}
