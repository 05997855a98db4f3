package usertags

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	out   []byte
	err   error
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.out, f.err
}

func TestParseMDLS(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
		err  error
	}{
		{name: "null", in: "(null)", err: ErrNoTags},
		{name: "empty output", in: "", err: ErrNoTags},
		{name: "empty list", in: "(\n)", err: ErrNoTags},
		{name: "raw list", in: "(\n    cat,\n    dog\n)", want: []string{"cat", "dog"}},
		{name: "quoted", in: "(\n    \"red car\",\n    \"say \\\"hi\\\"\",\n    sale\n)", want: []string{"red car", `say "hi"`, "sale"}},
		{name: "named", in: "kMDItemUserTags = (\n    beach\n)", want: []string{"beach"}},
		{name: "named null", in: "kMDItemUserTags = (null)", err: ErrNoTags},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMDLS([]byte(tc.in))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseMDLSMalformed(t *testing.T) {
	_, err := ParseMDLS([]byte("could not find /nope"))
	require.Error(t, err)

	_, err = ParseMDLS([]byte(`( "unterminated )`))
	require.Error(t, err)
}

func TestCommandRead(t *testing.T) {
	f := &fakeRunner{out: []byte("(\n    cat,\n    \"text: sale\"\n)\n")}
	c := NewCommand("", f.run)

	tags, err := c.Read(context.Background(), "/pics/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "text: sale"}, tags)
	require.Len(t, f.calls, 1)
	assert.Equal(t, "mdls", f.calls[0].name)
	assert.Equal(t, []string{"-raw", "-name", "kMDItemUserTags", "/pics/a.jpg"}, f.calls[0].args)
}

func TestCommandReadAbsent(t *testing.T) {
	f := &fakeRunner{out: []byte("(null)")}
	tags, err := NewCommand("", f.run).Read(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.NotNil(t, tags)
}

func TestCommandWrite(t *testing.T) {
	f := &fakeRunner{}
	c := NewCommand("", f.run)

	require.NoError(t, c.Write(context.Background(), "a.png", []string{"cat", "dog"}))
	require.Len(t, f.calls, 1)

	args := f.calls[0].args
	assert.Equal(t, "xattr", f.calls[0].name)
	require.Len(t, args, 4)
	assert.Equal(t, "-w", args[0])
	assert.Equal(t, "com.apple.metadata:_kMDItemUserTags", args[1])
	assert.Equal(t, "a.png", args[3])

	got, err := Decode([]byte(args[2]))
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, got)
}

func TestCommandWriteFailure(t *testing.T) {
	f := &fakeRunner{err: errors.New("xattr: exit status 1: permission denied")}
	err := NewCommand("", f.run).Write(context.Background(), "a.png", []string{"cat"})
	require.Error(t, err)
}

func TestCommandClearMissingIsNoop(t *testing.T) {
	f := &fakeRunner{err: errors.New("xattr: exit status 1: xattr: a.png: No such xattr: com.apple.metadata:_kMDItemUserTags")}
	require.NoError(t, NewCommand("", f.run).Clear(context.Background(), "a.png"))
	assert.Equal(t, []string{"-d", "com.apple.metadata:_kMDItemUserTags", "a.png"}, f.calls[0].args)
}

func TestCommandClearOtherErrors(t *testing.T) {
	f := &fakeRunner{err: errors.New("xattr: exit status 1: Operation not permitted")}
	err := NewCommand("", f.run).Clear(context.Background(), "a.png")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not permitted"))
}
