package usertags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryRunDoesNotWrite(t *testing.T) {
	f := &fakeRunner{out: []byte("(\n    cat\n)")}
	d := NewDryRun(NewCommand("", f.run))
	ctx := context.Background()

	tags, err := d.Read(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, tags)

	require.NoError(t, d.Write(ctx, "a.jpg", []string{"dog"}))
	require.NoError(t, d.Clear(ctx, "a.jpg"))
	assert.Len(t, f.calls, 1, "only the read should reach the runner")
}

func TestNewUnknownBackend(t *testing.T) {
	_, _, err := New(Options{Backend: "floppy"})
	require.Error(t, err)
}

func TestNewDryRunWraps(t *testing.T) {
	s, closer, err := New(Options{Backend: BackendCommand, DryRun: true})
	require.NoError(t, err)
	require.NoError(t, closer())
	_, ok := s.(*DryRun)
	assert.True(t, ok)
}
