package imgtag

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstromberg/imgtagman/pkg/vision"
)

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add("b")
	d.Add("a")
	d.Add("b")

	select {
	case batch := <-d.Output():
		assert.Equal(t, []string{"a", "b"}, batch)
	case <-time.After(2 * time.Second):
		t.Fatal("no batch")
	}
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "new.jpg")

	s := newMemStore()
	v := &fakeTagger{tags: map[string][]string{path: {"cat"}}}
	r := testRunner(s, v)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := make(chan *Report, 4)
	ready := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		errc <- r.Watch(ctx, root, WatchOptions{
			Scan:     ScanOptions{Extensions: VisionExtensions},
			Detail:   vision.DetailLow,
			Quiet:    30 * time.Millisecond,
			OnReport: func(rep *Report) { reports <- rep },
			ready:    ready,
		})
	}()
	<-ready

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	select {
	case rep := <-reports:
		require.Len(t, rep.Results, 1)
		assert.Equal(t, Tagged, rep.Results[0].Outcome)
		assert.Equal(t, path, rep.Results[0].File.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch batch")
	}

	tags, err := s.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, tags)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
