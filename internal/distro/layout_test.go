package distro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "apicheck/internal/errors"
)

func TestLocate(t *testing.T) {
	root := newDistro(t)
	writeJar(t, filepath.Join(root, "lib", "b.jar"))
	writeJar(t, filepath.Join(root, "lib", "a.jar"))
	writeJar(t, filepath.Join(root, "lib", "plugins", "p.jar"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib", "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", ".DS_Store"), nil, 0644))

	archives, err := DefaultLayout().Locate(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "lib", "a.jar"),
		filepath.Join(root, "lib", "b.jar"),
		filepath.Join(root, "lib", "plugins", "p.jar"),
	}, archives)
}

func TestLocate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  apierrors.ErrorCode
	}{
		{
			name:  "missing root",
			setup: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			want:  apierrors.DistributionMissing,
		},
		{
			name: "root is a file",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "dist")
				require.NoError(t, os.WriteFile(p, nil, 0644))
				return p
			},
			want: apierrors.DistributionMissing,
		},
		{
			name:  "no lib",
			setup: func(t *testing.T) string { return t.TempDir() },
			want:  apierrors.LayoutInvalid,
		},
		{
			name: "no lib/plugins",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0755))
				return root
			},
			want: apierrors.LayoutInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultLayout().Locate(tt.setup(t))
			require.Error(t, err)
			assert.Equal(t, tt.want, apierrors.CodeOf(err))
		})
	}
}

func TestLocate_OptionalDir(t *testing.T) {
	root := t.TempDir()
	writeJar(t, filepath.Join(root, "jars", "x.jar"))
	layout := Layout{LibDirs: []LibDir{
		{Path: "jars", Required: true},
		{Path: "extra", Required: false},
	}}

	archives, err := layout.Locate(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "jars", "x.jar")}, archives)
}

func TestLocate_EmptyLayout(t *testing.T) {
	_, err := Layout{}.Locate(t.TempDir())
	assert.Equal(t, apierrors.LayoutInvalid, apierrors.CodeOf(err))
}
