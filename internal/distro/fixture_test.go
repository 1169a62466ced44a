package distro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"apicheck/internal/classfile"
)

// jarEntry is a raw zip entry; a nil body with a trailing slash name makes a
// directory entry.
type jarEntry struct {
	name string
	body []byte
}

func classEntry(facts classfile.ClassFacts) jarEntry {
	return jarEntry{name: facts.Name + ".class", body: classfile.Encode(facts)}
}

func writeJar(t *testing.T, path string, entries ...jarEntry) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if e.body != nil {
			_, err = w.Write(e.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
}

// newDistro creates root/lib and root/lib/plugins.
func newDistro(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib", "plugins"), 0755))
	return root
}

func publicClass(name, super string, methods ...string) classfile.ClassFacts {
	facts := classfile.ClassFacts{Name: name, Access: classfile.AccPublic, SuperName: super}
	for _, m := range methods {
		for i := 0; i < len(m); i++ {
			if m[i] == '(' {
				facts.Methods = append(facts.Methods, classfile.MemberFacts{
					Access: classfile.AccPublic, Name: m[:i], Descriptor: m[i:],
				})
				break
			}
		}
	}
	return facts
}
