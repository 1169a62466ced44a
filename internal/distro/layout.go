// Package distro locates the library archives of an unpacked Java
// distribution and loads their class files into a class registry.
package distro

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apierrors "apicheck/internal/errors"
)

// LibDir is a directory, relative to a distribution root, whose files are
// read as archives.
type LibDir struct {
	Path     string
	Required bool
}

// Layout lists the library directories of a distribution in scan order.
type Layout struct {
	LibDirs []LibDir
}

// DefaultLayout is lib/ followed by lib/plugins/, both required.
func DefaultLayout() Layout {
	return Layout{LibDirs: []LibDir{
		{Path: "lib", Required: true},
		{Path: filepath.Join("lib", "plugins"), Required: true},
	}}
}

// Locate returns the archive paths of the distribution at root. Every regular
// file directly inside a library directory is an archive; subdirectories are
// not descended into. Paths come back in directory order, then name order.
func (l Layout) Locate(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, apierrors.New(apierrors.DistributionMissing,
			fmt.Sprintf("directory %s does not exist", root), err).
			WithDetails(map[string]string{"root": root})
	}
	if len(l.LibDirs) == 0 {
		return nil, apierrors.Newf(apierrors.LayoutInvalid, "layout has no library directories")
	}

	var archives []string
	for _, dir := range l.LibDirs {
		abs := filepath.Join(root, dir.Path)
		entries, err := os.ReadDir(abs)
		if err != nil {
			if !dir.Required && os.IsNotExist(err) {
				continue
			}
			return nil, apierrors.New(apierrors.LayoutInvalid,
				fmt.Sprintf("distribution %s does not contain a %s/ directory", root, filepath.ToSlash(dir.Path)), err).
				WithDetails(map[string]string{"root": root, "dir": dir.Path})
		}
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			path := filepath.Join(abs, entry.Name())
			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			archives = append(archives, path)
		}
	}
	return archives, nil
}
