package fserr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not exist", fs.ErrNotExist, NotFound},
		{"path error enoent", &fs.PathError{Op: "open", Path: "x", Err: syscall.ENOENT}, NotFound},
		{"permission", fs.ErrPermission, PermissionDenied},
		{"eperm", &fs.PathError{Op: "unlink", Path: "x", Err: syscall.EPERM}, PermissionDenied},
		{"exists", &fs.PathError{Op: "mkdir", Path: "x", Err: syscall.EEXIST}, AlreadyExists},
		{"not empty", &fs.PathError{Op: "rmdir", Path: "x", Err: syscall.ENOTEMPTY}, NotEmpty},
		{"wrapped", fmt.Errorf("outer: %w", fs.ErrNotExist), NotFound},
		{"unknown", errors.New("boom"), OperationFailed},
		{"explicit kind", New(InvalidURI, "resolve", "", errors.New("bad")), InvalidURI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassifyRealErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := os.Stat(filepath.Join(dir, "missing"))
	assert.Equal(t, NotFound, Classify(err))

	err = os.Mkdir(dir, 0o755)
	assert.Equal(t, AlreadyExists, Classify(err))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "f"), []byte("x"), 0o644))
	err = os.Remove(filepath.Join(dir, "sub"))
	assert.Equal(t, NotEmpty, Classify(err))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "stat", "/x"))

	err := Wrap(fs.ErrNotExist, "stat", "/x")
	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, NotFound, fe.Kind)
	assert.Equal(t, "stat", fe.Op)
	assert.Equal(t, "/x", fe.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	// already classified errors pass through untouched
	again := Wrap(err, "copy", "/y")
	assert.Same(t, err, again)
}

func TestIs(t *testing.T) {
	assert.True(t, Is(New(NotEmpty, "delete", "/d", nil), NotEmpty))
	assert.False(t, Is(nil, NotFound))
	assert.False(t, Is(errors.New("x"), NotFound))
}

func TestUnclassified(t *testing.T) {
	assert.True(t, Unclassified(errors.New("boom")))
	assert.True(t, Unclassified(Wrap(errors.New("boom"), "op", "p")))
	assert.False(t, Unclassified(Wrap(fs.ErrNotExist, "op", "p")))
	assert.False(t, Unclassified(New(InvalidURI, "resolve", "", errors.New("bad"))))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "already_exists", AlreadyExists.String())
	assert.Equal(t, "operation_failed", Kind(99).String())
}
