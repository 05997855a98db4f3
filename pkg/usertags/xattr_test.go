//go:build linux || darwin

package usertags

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// xattrFile returns a file on a filesystem that accepts user xattrs, or skips.
func xattrFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(p, []byte("not really a jpeg"), 0o600))

	err := unix.Setxattr(p, DefaultAttribute, []byte("probe"), 0)
	if errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.EPERM) {
		t.Skipf("extended attributes unsupported in %s: %v", filepath.Dir(p), err)
	}
	require.NoError(t, err)
	require.NoError(t, unix.Removexattr(p, DefaultAttribute))
	return p
}

func TestXattrRoundTrip(t *testing.T) {
	p := xattrFile(t)
	ctx := context.Background()
	x := NewXattr("")

	tags, err := x.Read(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, tags)

	want := []string{"cat", "red", "text:sale"}
	require.NoError(t, x.Write(ctx, p, want))

	got, err := x.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, x.Clear(ctx, p))
	got, err = x.Read(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestXattrClearAbsentIsNoop(t *testing.T) {
	p := xattrFile(t)
	require.NoError(t, NewXattr("").Clear(context.Background(), p))
}

func TestXattrReadMissingFile(t *testing.T) {
	_, err := NewXattr("").Read(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
}
