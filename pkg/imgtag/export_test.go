package imgtag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	for _, p := range []string{"a.jpg", "b.jpg", "sub/c.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, p), []byte("data "+p), 0o644))
	}

	files, err := Find(src, ScanOptions{Recursive: true})
	require.NoError(t, err)
	require.Len(t, files, 3)

	s := newMemStore()
	s.set(filepath.Join(src, "a.jpg"), "beach", "sun")
	s.set(filepath.Join(src, "sub", "c.png"), "Beach")

	rep, err := testRunner(s, nil).Export(context.Background(), files, "beach", dest)
	require.NoError(t, err)
	assert.Equal(t, map[Outcome]int{Exported: 2, Untouched: 1}, rep.Counts())

	bs, err := os.ReadFile(filepath.Join(dest, "sub", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, "data sub/c.png", string(bs))
	assert.NoFileExists(t, filepath.Join(dest, "b.jpg"))

	tags, err := s.Read(context.Background(), filepath.Join(dest, "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "sun"}, tags)
}

func TestExportDryRun(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.jpg"), []byte("x"), 0o644))

	files, err := Find(src, ScanOptions{})
	require.NoError(t, err)
	s := newMemStore()
	s.set(files[0].Path, "beach")

	r := testRunner(s, nil)
	r.DryRun = true
	rep, err := r.Export(context.Background(), files, "beach", dest)
	require.NoError(t, err)
	assert.Equal(t, map[Outcome]int{Exported: 1}, rep.Counts())
	assert.NoDirExists(t, dest)
}
