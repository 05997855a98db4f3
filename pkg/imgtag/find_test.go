package imgtag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
}

func relPaths(files []ImageFile) []string {
	out := []string{}
	for _, f := range files {
		out = append(out, filepath.ToSlash(f.RelPath))
	}
	return out
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.PNG", "c.txt", "d.tiff", ".hidden.jpg", "sub/e.jpeg", "skip/f.jpg", ".git/g.jpg")

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{name: "top level", opts: ScanOptions{}, want: []string{"a.jpg", "b.PNG", "d.tiff"}},
		{name: "vision only", opts: ScanOptions{Extensions: VisionExtensions}, want: []string{"a.jpg", "b.PNG"}},
		{name: "recursive", opts: ScanOptions{Recursive: true}, want: []string{"a.jpg", "b.PNG", "d.tiff", "skip/f.jpg", "sub/e.jpeg"}},
		{name: "exclude", opts: ScanOptions{Recursive: true, Exclude: []string{"skip", "*.tiff"}}, want: []string{"a.jpg", "b.PNG", "sub/e.jpeg"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Find(root, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, relPaths(got))
		})
	}
}

func TestFindMIMEType(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.JPG")

	got, err := Find(root, ScanOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ".jpg", got[0].Ext)
	assert.Equal(t, "image/jpeg", got[0].MIMEType)
	assert.Equal(t, filepath.Join(root, "a.JPG"), got[0].Path)
}

func TestFindErrors(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg")

	_, err := Find(filepath.Join(root, "missing"), ScanOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Find(filepath.Join(root, "a.jpg"), ScanOptions{})
	assert.Error(t, err)

	_, err = Find(root, ScanOptions{Exclude: []string{"[a-"}})
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	root := "/photos"
	tests := []struct {
		path string
		opts ScanOptions
		want bool
	}{
		{path: "/photos/a.jpg", want: true},
		{path: "/photos/a.txt"},
		{path: "/photos/.a.jpg"},
		{path: "/elsewhere/a.jpg"},
		{path: "/photos/sub/a.jpg"},
		{path: "/photos/sub/a.jpg", opts: ScanOptions{Recursive: true}, want: true},
		{path: "/photos/.cache/a.jpg", opts: ScanOptions{Recursive: true}},
		{path: "/photos/skip/a.jpg", opts: ScanOptions{Recursive: true, Exclude: []string{"skip"}}},
	}
	for _, tc := range tests {
		_, ok := Match(root, tc.path, tc.opts)
		assert.Equal(t, tc.want, ok, "%s %+v", tc.path, tc.opts)
	}
}

func TestDirs(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a/x.jpg", "a/b/y.jpg", ".hidden/z.jpg", "skip/w.jpg")

	got, err := Dirs(root, ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{root}, got)

	got, err = Dirs(root, ScanOptions{Recursive: true, Exclude: []string{"skip"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root, filepath.Join(root, "a"), filepath.Join(root, "a", "b")}, got)
}
