package distro

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/zip"

	"apicheck/internal/classfile"
	apierrors "apicheck/internal/errors"
)

// ClassVisitor receives the decoded facts of one archive entry.
type ClassVisitor func(entry string, facts *classfile.ClassFacts) error

// isClassEntry reports whether a zip entry holds a class file we read.
// Versioned copies under META-INF/ shadow the base entries at runtime only.
func isClassEntry(f *zip.File) bool {
	if f.FileInfo().IsDir() {
		return false
	}
	if strings.HasPrefix(f.Name, "META-INF/") {
		return false
	}
	return strings.HasSuffix(f.Name, ".class")
}

// ReadArchive decodes every class entry of the jar at path, in archive order,
// and hands the facts to visit. It returns the number of classes visited.
func ReadArchive(path string, visit ClassVisitor) (int, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return 0, apierrors.New(apierrors.ArchiveUnreadable,
			fmt.Sprintf("cannot open archive %s", path), err).
			WithDetails(map[string]string{"archive": path})
	}
	defer rc.Close()

	count := 0
	for _, f := range rc.File {
		if !isClassEntry(f) {
			continue
		}
		facts, err := readEntry(f)
		if err != nil {
			return count, fmt.Errorf("%s!%s: %w", path, f.Name, err)
		}
		if err := visit(f.Name, facts); err != nil {
			return count, fmt.Errorf("%s!%s: %w", path, f.Name, err)
		}
		count++
	}
	return count, nil
}

func readEntry(f *zip.File) (*classfile.ClassFacts, error) {
	r, err := f.Open()
	if err != nil {
		return nil, apierrors.New(apierrors.ArchiveUnreadable, "cannot open entry", err)
	}
	defer r.Close()
	return classfile.Decode(r)
}
