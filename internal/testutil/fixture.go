package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"apicheck/internal/classfile"
)

// Class builds public class facts. Members are written as "foo()V" for a
// method or "count:I" for a field; a leading '#' makes the member protected
// and a leading '-' makes it private.
func Class(name, super string, members ...string) classfile.ClassFacts {
	facts := classfile.ClassFacts{Name: name, Access: classfile.AccPublic, SuperName: super}
	for _, m := range members {
		access := classfile.AccPublic
		switch {
		case strings.HasPrefix(m, "#"):
			access, m = classfile.AccProtected, m[1:]
		case strings.HasPrefix(m, "-"):
			access, m = classfile.AccPrivate, m[1:]
		}
		if i := strings.IndexByte(m, ':'); i >= 0 {
			facts.Fields = append(facts.Fields, classfile.MemberFacts{Access: access, Name: m[:i], Descriptor: m[i+1:]})
			continue
		}
		i := strings.IndexByte(m, '(')
		if i < 0 {
			panic("testutil: member " + m + " is neither a method nor a field")
		}
		facts.Methods = append(facts.Methods, classfile.MemberFacts{Access: access, Name: m[:i], Descriptor: m[i:]})
	}
	return facts
}

// WriteJar packs the encoded classes into a jar at path.
func WriteJar(t *testing.T, path string, classes ...classfile.ClassFacts) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create jar directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create jar: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, c := range classes {
		w, err := zw.Create(c.Name + ".class")
		if err != nil {
			t.Fatalf("Failed to add %s: %v", c.Name, err)
		}
		if _, err := w.Write(classfile.Encode(c)); err != nil {
			t.Fatalf("Failed to write %s: %v", c.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close jar: %v", err)
	}
}

// NewDistro creates a distribution in the default layout with the classes
// packed into lib/core.jar and an empty lib/plugins/.
func NewDistro(t *testing.T, classes ...classfile.ClassFacts) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "lib", "plugins"), 0o755); err != nil {
		t.Fatalf("Failed to create distribution: %v", err)
	}
	WriteJar(t, filepath.Join(root, "lib", "core.jar"), classes...)
	return root
}
