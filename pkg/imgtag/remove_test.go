package imgtag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemove(t *testing.T) {
	s := newMemStore()
	s.set("a.jpg", "cat", "dog")

	rep := testRunner(s, nil).Remove(context.Background(), images("a.jpg", "b.jpg"))
	require.Len(t, rep.Results, 2)
	assert.Equal(t, Removed, rep.Results[0].Outcome)
	assert.Equal(t, []string{"cat", "dog"}, rep.Results[0].Tags)
	assert.Equal(t, Untouched, rep.Results[1].Outcome)
	assert.NoError(t, rep.Results[1].Err)

	_, clears := s.counts()
	assert.Equal(t, 1, clears)

	got, err := s.Read(context.Background(), "a.jpg")
	require.NoError(t, err)
	assert.Empty(t, got)
}
