package distro

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"apicheck/internal/classfile"
	"apicheck/internal/classgraph"
	"apicheck/internal/slogutil"
)

// Distribution is a loaded and resolved distribution.
type Distribution struct {
	Root       string
	Archives   []string
	ClassFiles int
	Registry   *classgraph.Registry
}

// Loader reads distributions into class registries.
type Loader struct {
	layout Layout
	policy classgraph.NamingPolicy
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(layout Layout, policy classgraph.NamingPolicy, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Loader{layout: layout, policy: policy, logger: logger}
}

// Load locates the archives under root, feeds every class file into a fresh
// registry and resolves it. Any failure aborts the whole load.
func (l *Loader) Load(ctx context.Context, root string) (*Distribution, error) {
	start := time.Now()
	archives, err := l.layout.Locate(root)
	if err != nil {
		return nil, err
	}

	registry := classgraph.NewRegistry(l.policy)
	visit := func(_ string, facts *classfile.ClassFacts) error {
		if facts.IsModuleInfo() {
			return nil
		}
		return registry.Load(facts)
	}

	total := 0
	for _, archive := range archives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := ReadArchive(archive, visit)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Read archive", "archive", archive, "classes", n)
		total += n
	}

	if err := registry.ResolveAll(); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	if dups := registry.Duplicates(); len(dups) > 0 {
		l.logger.Warn("Classes defined more than once", "root", root, "count", len(dups), "first", dups[0])
	}
	l.logger.Info("Loaded distribution",
		"root", root,
		"archives", len(archives),
		"classFiles", total,
		"classes", registry.Len(),
		"visible", len(registry.VisibleNames()),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &Distribution{
		Root:       root,
		Archives:   archives,
		ClassFiles: total,
		Registry:   registry,
	}, nil
}
