package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackaudit/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// tempDir returns a fresh directory with symlinks resolved, matching the
// paths FindManifests reports.
func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestFindManifests(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("case-insensitive filesystem")
	}

	root := tempDir(t)
	for _, p := range []string{
		"packages.config",
		"src/App/packages.config",
		"src/Lib/packages.config",
		".hidden/packages.config",
		"src/App/packages.config.bak",
		"src/App/Packages.config",
		"src/App/app.csproj",
	} {
		writeFile(t, filepath.Join(root, p), "<packages />")
	}

	seq, err := FindManifests(root)
	require.NoError(t, err)

	got := slices.Collect(seq)
	want := []string{
		filepath.Join(root, ".hidden", "packages.config"),
		filepath.Join(root, "packages.config"),
		filepath.Join(root, "src", "App", "packages.config"),
		filepath.Join(root, "src", "Lib", "packages.config"),
	}
	assert.Equal(t, want, got)
}

func TestFindManifestsRelativeRootIsAbsolute(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "packages.config"), "<packages />")
	t.Chdir(root)

	seq, err := FindManifests(".")
	require.NoError(t, err)

	for p := range seq {
		assert.True(t, filepath.IsAbs(p), "path %q should be absolute", p)
	}
}

func TestFindManifestsEmptyTree(t *testing.T) {
	seq, err := FindManifests(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(seq))
}

func TestFindManifestsRerangeable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "packages.config"), "<packages />")

	seq, err := FindManifests(root)
	require.NoError(t, err)

	assert.Len(t, slices.Collect(seq), 1)
	writeFile(t, filepath.Join(root, "b", "packages.config"), "<packages />")
	assert.Len(t, slices.Collect(seq), 2, "a second range walks the tree again")
}

func TestFindManifestsEarlyBreak(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"a", "b", "c"} {
		writeFile(t, filepath.Join(root, d, "packages.config"), "<packages />")
	}

	seq, err := FindManifests(root)
	require.NoError(t, err)

	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestFindManifestsDiscoveryErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	writeFile(t, file, "x")

	tests := []struct {
		name string
		root string
	}{
		{"missing", filepath.Join(root, "does-not-exist")},
		{"not a directory", file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := FindManifests(tt.root)
			require.Error(t, err)
			assert.Nil(t, seq)
			assert.True(t, errors.Is(err, errors.ErrCodeDiscovery), "got %v", err)
		})
	}
}

func TestFindManifestsSkipsUnreadableSubdir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	root := tempDir(t)
	writeFile(t, filepath.Join(root, "ok", "packages.config"), "<packages />")
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "packages.config"), "<packages />")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	seq, err := FindManifests(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "ok", "packages.config")}, slices.Collect(seq))
}

func TestFindManifestsSymlinkedRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges")
	}

	dir := tempDir(t)
	real := filepath.Join(dir, "real")
	writeFile(t, filepath.Join(real, "a", "packages.config"), "<packages />")
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(real, link))

	seq, err := FindManifests(link)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(real, "a", "packages.config")}, slices.Collect(seq))
}

func TestFindManifestsDanglingSymlinkRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges")
	}

	dir := tempDir(t)
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), link))

	_, err := FindManifests(link)
	assert.True(t, errors.Is(err, errors.ErrCodeDiscovery), "got %v", err)
}
