package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/datasprayio/dataspray/internal/shared/fserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root, err := NewRoot(t.TempDir())
	require.NoError(t, err)
	return NewResolver(root), root.Dir()
}

func TestNewRoot(t *testing.T) {
	dir := t.TempDir()

	root, err := NewRoot(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(root.Dir()))
	assert.NoError(t, root.Check())

	_, err = NewRoot("")
	assert.Error(t, err)

	_, err = NewRoot(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewRoot(file)
	assert.Error(t, err)
}

func TestRootContains(t *testing.T) {
	root, err := NewRoot(t.TempDir())
	require.NoError(t, err)

	assert.True(t, root.Contains(root.Dir()))
	assert.True(t, root.Contains(filepath.Join(root.Dir(), "a", "b")))
	assert.True(t, root.Contains(filepath.Join(root.Dir(), "..data")))
	assert.False(t, root.Contains(filepath.Dir(root.Dir())))
}

func TestResolve(t *testing.T) {
	r, dir := newTestResolver(t)

	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"root", "io.dataspray.remote:///", dir},
		{"root without slash", "io.dataspray.remote://", dir},
		{"dot", "io.dataspray.remote:///.", dir},
		{"file", "io.dataspray.remote:///file1", filepath.Join(dir, "file1")},
		{"nested", "io.dataspray.remote:///dir1/file1", filepath.Join(dir, "dir1", "file1")},
		{"extra slashes", "io.dataspray.remote://///dir1//file1", filepath.Join(dir, "dir1", "file1")},
		{"dot segments", "io.dataspray.remote:///dir1/./x/../file1", filepath.Join(dir, "dir1", "file1")},
		{"escape clamped", "io.dataspray.remote:///../../etc/passwd", filepath.Join(dir, "etc", "passwd")},
		{"escaped chars", "io.dataspray.remote:///my%20file", filepath.Join(dir, "my file")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, r.Root().Contains(got))
		})
	}
}

func TestResolveInvalid(t *testing.T) {
	r, _ := newTestResolver(t)

	for _, uri := range []string{
		"",
		"file1",
		"/abs/path",
		"file:///file1",
		"IO.DATASPRAY.REMOTE:///file1",
		"io.dataspray.remote:file1",
		"io.dataspray.remote://host/file1",
		"io.dataspray.remote:///%zz",
		"io.dataspray.remote:///important#old",
		"io.dataspray.remote:///important#",
		"io.dataspray.remote:///?x=1",
		"io.dataspray.remote:///file1?",
	} {
		t.Run(uri, func(t *testing.T) {
			_, err := r.Resolve(uri)
			require.Error(t, err)
			assert.Equal(t, fserr.InvalidURI, fserr.KindOf(err))
		})
	}
}

func TestUnresolve(t *testing.T) {
	r, dir := newTestResolver(t)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"relative", "file1", "io.dataspray.remote:///file1"},
		{"relative nested", "dir1/file1", "io.dataspray.remote:///dir1/file1"},
		{"relative dot", ".", "io.dataspray.remote:///"},
		{"absolute root", dir, "io.dataspray.remote:///"},
		{"absolute nested", filepath.Join(dir, "dir1", "file1"), "io.dataspray.remote:///dir1/file1"},
		{"absolute unclean", dir + "/dir1/../file1", "io.dataspray.remote:///file1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Unresolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnresolveOutsideRoot(t *testing.T) {
	r, dir := newTestResolver(t)

	for _, p := range []string{"..", "../x", filepath.Dir(dir)} {
		_, err := r.Unresolve(p)
		require.Error(t, err)
		assert.Equal(t, fserr.InvalidURI, fserr.KindOf(err))
	}
}

func TestRoundTrip(t *testing.T) {
	r, dir := newTestResolver(t)

	paths := []string{
		dir,
		filepath.Join(dir, "a"),
		filepath.Join(dir, "a", "b", "c.txt"),
		dir + "/a/./b/../c",
		filepath.Join(dir, "with space", "ü.txt"),
		filepath.Join(dir, "100%", "#hash"),
	}

	for _, p := range paths {
		uri, err := r.Unresolve(p)
		require.NoError(t, err)

		back, err := r.Resolve(uri)
		require.NoError(t, err)
		assert.Equal(t, filepath.Clean(p), back, "uri %s", uri)
	}
}

// TestResolveEncodedReservedCharacters tests that names containing '#' or '?'
// are reachable once percent-encoded, and round-trip through Unresolve
func TestResolveEncodedReservedCharacters(t *testing.T) {
	r, dir := newTestResolver(t)

	p, err := r.Resolve("io.dataspray.remote:///important%23old")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "important#old"), p)

	uri, err := r.Unresolve(filepath.Join(dir, "what?"))
	require.NoError(t, err)
	back, err := r.Resolve(uri)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "what?"), back)
}
