package distro

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apicheck/internal/classfile"
	"apicheck/internal/classgraph"
	apierrors "apicheck/internal/errors"
)

func TestLoader_Load(t *testing.T) {
	root := newDistro(t)
	writeJar(t, filepath.Join(root, "lib", "core.jar"),
		jarEntry{name: "org/"},
		classEntry(publicClass("org/api/Base", "java/lang/Object", "run()V")),
		classEntry(publicClass("org/api/Impl", "org/api/Base", "extra()V")),
		jarEntry{name: "META-INF/MANIFEST.MF", body: []byte("Manifest-Version: 1.0\n")},
		jarEntry{name: "META-INF/versions/11/org/api/Base.class", body: []byte("not a class")},
		jarEntry{name: "org/api/messages.properties", body: []byte("k=v")},
	)
	writeJar(t, filepath.Join(root, "lib", "plugins", "plugin.jar"),
		classEntry(publicClass("org/internal/Helper", "org/api/Base")),
	)

	policy := classgraph.PolicyFromLists([]string{"org/"}, nil, []string{"/internal/"})
	dist, err := NewLoader(DefaultLayout(), policy, nil).Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, dist.ClassFiles)
	assert.Len(t, dist.Archives, 2)
	assert.True(t, dist.Registry.Resolved())
	assert.Equal(t, []string{"org/api/Base", "org/api/Impl"}, dist.Registry.VisibleNames())

	impl, ok := dist.Registry.LookupVisible("org/api/Impl")
	require.True(t, ok)
	var sigs []string
	for _, m := range impl.VisibleMethods() {
		sigs = append(sigs, m.Signature())
	}
	assert.Equal(t, []string{"extra()V", "run()V"}, sigs)
}

func TestLoader_MalformedClass(t *testing.T) {
	root := newDistro(t)
	writeJar(t, filepath.Join(root, "lib", "bad.jar"),
		jarEntry{name: "p/Bad.class", body: []byte{0xCA, 0xFE}},
	)

	_, err := NewLoader(DefaultLayout(), classgraph.NamingPolicy{}, nil).Load(context.Background(), root)
	require.Error(t, err)
	assert.Equal(t, apierrors.ClassMalformed, apierrors.CodeOf(err))
	assert.Contains(t, err.Error(), "p/Bad.class")
}

func TestLoader_UnreadableArchive(t *testing.T) {
	root := newDistro(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "README"), []byte("not a zip"), 0644))

	_, err := NewLoader(DefaultLayout(), classgraph.NamingPolicy{}, nil).Load(context.Background(), root)
	assert.Equal(t, apierrors.ArchiveUnreadable, apierrors.CodeOf(err))
}

func TestLoader_Cycle(t *testing.T) {
	root := newDistro(t)
	writeJar(t, filepath.Join(root, "lib", "cycle.jar"),
		classEntry(publicClass("p/A", "p/B")),
		classEntry(publicClass("p/B", "p/A")),
	)

	_, err := NewLoader(DefaultLayout(), classgraph.NamingPolicy{}, nil).Load(context.Background(), root)
	assert.Equal(t, apierrors.InheritanceCycle, apierrors.CodeOf(err))
}

func TestLoader_Cancelled(t *testing.T) {
	root := newDistro(t)
	writeJar(t, filepath.Join(root, "lib", "a.jar"), classEntry(publicClass("p/A", "")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(DefaultLayout(), classgraph.NamingPolicy{}, nil).Load(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadArchive_Count(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jar")
	writeJar(t, path,
		classEntry(publicClass("a/A", "")),
		classEntry(classfile.ClassFacts{Name: "a/B", SuperName: "a/A"}),
	)

	var names []string
	n, err := ReadArchive(path, func(entry string, facts *classfile.ClassFacts) error {
		names = append(names, facts.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a/A", "a/B"}, names)
}

func TestLoader_SkipsModuleInfo(t *testing.T) {
	root := newDistro(t)
	writeJar(t, filepath.Join(root, "lib", "core.jar"),
		classEntry(classfile.ClassFacts{Name: "module-info", Access: classfile.AccModule}),
		classEntry(publicClass("org/api/Widget", "java/lang/Object")),
	)

	dist, err := NewLoader(DefaultLayout(), classgraph.NamingPolicy{}, nil).Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, dist.ClassFiles)
	_, ok := dist.Registry.Lookup("module-info")
	assert.False(t, ok)
	assert.Equal(t, []string{"org/api/Widget"}, dist.Registry.VisibleNames())
}
