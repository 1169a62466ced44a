package breaking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"apicheck/internal/apidiff"
	"apicheck/internal/classfile"
	"apicheck/internal/classgraph"
	"apicheck/internal/distro"
	apierrors "apicheck/internal/errors"
	"apicheck/internal/slogutil"
)

// Analyzer compares the visible API of two distributions
type Analyzer struct {
	loader *distro.Loader
	logger *slog.Logger
}

// NewAnalyzer creates a new breaking change analyzer
func NewAnalyzer(loader *distro.Loader, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Analyzer{
		loader: loader,
		logger: logger,
	}
}

// Compare loads both distributions and analyzes API changes between them.
// The two sides are loaded concurrently into independent registries.
func (a *Analyzer) Compare(ctx context.Context, opts CompareOptions) (*CompareResult, error) {
	if opts.BeforeRoot == "" || opts.AfterRoot == "" {
		return nil, apierrors.Newf(apierrors.InvalidInput, "both before and after distributions are required")
	}

	a.logger.Debug("Starting breaking change analysis",
		"before", opts.BeforeRoot,
		"after", opts.AfterRoot,
	)

	var before, after *distro.Distribution
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := a.loader.Load(gctx, opts.BeforeRoot)
		if err != nil {
			return fmt.Errorf("loading %s: %w", opts.BeforeRoot, err)
		}
		before = d
		return nil
	})
	g.Go(func() error {
		d, err := a.loader.Load(gctx, opts.AfterRoot)
		if err != nil {
			return fmt.Errorf("loading %s: %w", opts.AfterRoot, err)
		}
		after = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := a.CompareRegistries(before.Registry, after.Registry, opts)
	if err != nil {
		return nil, err
	}
	result.Before = opts.BeforeRoot
	result.After = opts.AfterRoot

	a.logger.Debug("API analysis completed",
		"changes", result.Summary.TotalChanges,
		"breaking", result.Summary.BreakingChanges,
		"accepted", result.Summary.Warnings,
	)
	return result, nil
}

// CompareRegistries diffs two resolved registries and classifies each
// difference.
func (a *Analyzer) CompareRegistries(before, after *classgraph.Registry, opts CompareOptions) (*CompareResult, error) {
	rec := apidiff.NewRecorder()
	if err := apidiff.Diff(before, after, rec.Listener()); err != nil {
		return nil, err
	}

	changes := []APIChange{}
	for _, e := range rec.Events {
		change, ok := changeFromEvent(e)
		if !ok {
			continue
		}
		if accepted, ok := opts.Baseline.Match(change); ok {
			change.Severity = SeverityWarning
			change.Accepted = true
			change.Reason = accepted.Reason
		}
		changes = append(changes, change)
	}

	// Sort changes by severity, keeping diff order within a severity
	sort.SliceStable(changes, func(i, j int) bool {
		return severityOrder(changes[i].Severity) < severityOrder(changes[j].Severity)
	})

	summary := computeSummary(changes)
	summary.ClassesAdded = rec.Count(apidiff.EventClassAdded)
	summary.ClassesRemoved = rec.Count(apidiff.EventClassRemoved)
	summary.ClassesChanged = rec.Count(apidiff.EventClassChanged)
	summary.ClassesUnchanged = rec.Count(apidiff.EventClassUnchanged)

	if !opts.IncludeMinor {
		changes = filterSeverity(changes, SeverityNonBreaking)
	}

	return &CompareResult{
		Changes:            changes,
		Summary:            summary,
		SemverAdvice:       computeSemverAdvice(summary),
		TotalBeforeClasses: len(before.VisibleNames()),
		TotalAfterClasses:  len(after.VisibleNames()),
		BeforeRegistry:     before,
		AfterRegistry:      after,
	}, nil
}

func severityOrder(s Severity) int {
	switch s {
	case SeverityBreaking:
		return 0
	case SeverityWarning:
		return 1
	case SeverityNonBreaking:
		return 2
	default:
		return 3
	}
}

func filterSeverity(changes []APIChange, drop Severity) []APIChange {
	out := changes[:0]
	for _, c := range changes {
		if c.Severity != drop {
			out = append(out, c)
		}
	}
	return out
}

// changeFromEvent classifies one diff event. Class-level bookkeeping events
// (changed, unchanged) carry no change of their own.
func changeFromEvent(e apidiff.Event) (APIChange, bool) {
	c := APIChange{
		Class:   e.Class,
		Member:  e.Subject,
		Package: packageOf(e.Class),
	}
	display := dotted(e.Class)

	switch e.Kind {
	case apidiff.EventClassAdded, apidiff.EventClassRemoved:
		c.SymbolName = display
		c.SymbolKind = typeKind(e.Before, e.After)
		label := "Class"
		if c.SymbolKind == SymbolInterface {
			label = "Interface"
		}
		if e.Kind == apidiff.EventClassAdded {
			c.Kind = ChangeAdded
			c.Description = fmt.Sprintf("%s '%s' was added", label, display)
		} else {
			c.Kind = ChangeRemoved
			c.Description = fmt.Sprintf("%s '%s' was removed", label, display)
		}

	case apidiff.EventSuperclassChanged:
		c.Kind = ChangeSuperclassChanged
		c.SymbolKind = SymbolSuperclass
		c.SymbolName = display
		c.OldValue = dotted(e.OldValue)
		c.NewValue = dotted(e.NewValue)
		c.Description = fmt.Sprintf("Superclass of '%s' changed from '%s' to '%s'",
			display, orNone(c.OldValue), orNone(c.NewValue))

	case apidiff.EventInterfaceAdded:
		c.Kind = ChangeAdded
		c.SymbolKind = SymbolSupertype
		c.SymbolName = display + "#" + dotted(e.Subject)
		c.NewValue = dotted(e.Subject)
		c.Description = fmt.Sprintf("'%s' now implements '%s'", display, c.NewValue)

	case apidiff.EventInterfaceRemoved:
		c.Kind = ChangeRemoved
		c.SymbolKind = SymbolSupertype
		c.SymbolName = display + "#" + dotted(e.Subject)
		c.OldValue = dotted(e.Subject)
		c.Description = fmt.Sprintf("'%s' no longer implements '%s'", display, c.OldValue)

	case apidiff.EventMethodAdded, apidiff.EventMethodRemoved,
		apidiff.EventFieldAdded, apidiff.EventFieldRemoved:
		c.SymbolName = display + "#" + e.Subject
		label := "Method"
		c.SymbolKind = SymbolMethod
		if e.Kind == apidiff.EventFieldAdded || e.Kind == apidiff.EventFieldRemoved {
			label = "Field"
			c.SymbolKind = SymbolField
		}
		if e.Kind == apidiff.EventMethodAdded || e.Kind == apidiff.EventFieldAdded {
			c.Kind = ChangeAdded
			c.NewValue = e.Subject
			c.Description = fmt.Sprintf("%s '%s' was added to '%s'", label, e.Subject, display)
		} else {
			c.Kind = ChangeRemoved
			c.OldValue = e.Subject
			c.Description = fmt.Sprintf("%s '%s' was removed from '%s'", label, e.Subject, display)
		}

	default:
		return APIChange{}, false
	}

	if c.Kind == ChangeAdded {
		c.Severity = SeverityNonBreaking
	} else {
		c.Severity = SeverityBreaking
		c.AffectsUsers = true
	}
	return c, true
}

func typeKind(before, after *classgraph.Class) SymbolKind {
	c := after
	if c == nil {
		c = before
	}
	if c != nil && c.Access()&classfile.AccInterface != 0 {
		return SymbolInterface
	}
	return SymbolClass
}

// computeSummary calculates summary statistics
func computeSummary(changes []APIChange) *Summary {
	summary := &Summary{
		TotalChanges: len(changes),
		ByKind:       make(map[string]int),
		BySymbolKind: make(map[string]int),
		ByPackage:    make(map[string]int),
	}

	for _, change := range changes {
		summary.ByKind[string(change.Kind)]++
		summary.BySymbolKind[string(change.SymbolKind)]++
		if change.Package != "" {
			summary.ByPackage[change.Package]++
		}

		switch change.Severity {
		case SeverityBreaking:
			summary.BreakingChanges++
		case SeverityWarning:
			summary.Warnings++
		case SeverityNonBreaking:
			summary.Additions++
		}
	}

	return summary
}

// computeSemverAdvice suggests the appropriate version bump. Accepted
// breaking changes still break consumers, so they count toward major.
func computeSemverAdvice(summary *Summary) string {
	if summary.BreakingChanges > 0 || summary.Warnings > 0 {
		return "major"
	}
	if summary.Additions > 0 {
		return "minor"
	}
	return "patch"
}

// Helper functions

func dotted(binaryName string) string {
	return strings.ReplaceAll(binaryName, "/", ".")
}

func packageOf(binaryName string) string {
	if i := strings.LastIndex(binaryName, "/"); i >= 0 {
		return dotted(binaryName[:i])
	}
	return ""
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
