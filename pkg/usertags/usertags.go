// Package usertags reads and writes the user tags attached to files.
//
// Tags live outside the file contents, in an extended attribute holding a
// property-list array of strings (the format Finder uses), or in embedded
// IPTC/XMP keywords when the exiftool backend is selected.
package usertags

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoTags is returned by decoders when an attribute holds no tags.
var ErrNoTags = errors.New("no tags present")

// Store reads, writes and clears the tags of a single file.
//
// Read returns an empty slice (and no error) when the file has no tags.
// Clear returns nil when there was nothing to clear.
type Store interface {
	Read(ctx context.Context, path string) ([]string, error)
	Write(ctx context.Context, path string, tags []string) error
	Clear(ctx context.Context, path string) error
}

// Backend names accepted by New.
const (
	BackendXattr    = "xattr"
	BackendCommand  = "command"
	BackendExiftool = "exiftool"
)

// Options configures New.
type Options struct {
	// Backend is one of the Backend* constants. Empty means BackendXattr.
	Backend string
	// Attribute overrides the extended attribute name (xattr and command backends).
	Attribute string
	// DryRun logs writes and clears instead of performing them.
	DryRun bool
}

// New returns the Store selected by opts, along with a function that
// releases any resources it holds.
func New(opts Options) (Store, func() error, error) {
	var (
		s      Store
		closer = func() error { return nil }
	)

	switch opts.Backend {
	case "", BackendXattr:
		s = NewXattr(opts.Attribute)
	case BackendCommand:
		s = NewCommand(opts.Attribute, nil)
	case BackendExiftool:
		e, err := NewExif()
		if err != nil {
			return nil, nil, err
		}
		s = e
		closer = e.Close
	default:
		return nil, nil, fmt.Errorf("unknown tag store %q", opts.Backend)
	}

	if opts.DryRun {
		s = NewDryRun(s)
	}
	return s, closer, nil
}
