//go:build !linux && !darwin

package usertags

import (
	"context"
	"errors"
	"runtime"
)

// DefaultAttribute is unused on this platform.
const DefaultAttribute = ""

var errXattrUnsupported = errors.New("extended attributes are not supported on " + runtime.GOOS)

// Xattr is unavailable on this platform; every call fails.
type Xattr struct{}

// NewXattr returns a Store that always fails.
func NewXattr(string) *Xattr { return &Xattr{} }

// Read always fails.
func (*Xattr) Read(context.Context, string) ([]string, error) { return nil, errXattrUnsupported }

// Write always fails.
func (*Xattr) Write(context.Context, string, []string) error { return errXattrUnsupported }

// Clear always fails.
func (*Xattr) Clear(context.Context, string) error { return errXattrUnsupported }
