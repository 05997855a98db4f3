//go:build linux || darwin

package usertags

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

// Xattr stores tags directly in an extended attribute.
type Xattr struct {
	attr string
}

// NewXattr returns an extended attribute Store. An empty attr selects
// DefaultAttribute.
func NewXattr(attr string) *Xattr {
	if attr == "" {
		attr = DefaultAttribute
	}
	return &Xattr{attr: attr}
}

// Read returns the tags stored on path.
func (x *Xattr) Read(_ context.Context, path string) ([]string, error) {
	bs, err := getxattr(path, x.attr)
	if errors.Is(err, errNoAttr) {
		klog.V(2).Infof("%s: no %s attribute", path, x.attr)
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getxattr %s: %w", path, err)
	}

	tags, err := Decode(bs)
	if errors.Is(err, ErrNoTags) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tags, nil
}

// Write replaces the tags stored on path.
func (x *Xattr) Write(_ context.Context, path string, tags []string) error {
	bs, err := Encode(tags)
	if err != nil {
		return err
	}
	if err := unix.Setxattr(path, x.attr, bs, 0); err != nil {
		return fmt.Errorf("setxattr %s: %w", path, err)
	}
	return nil
}

// Clear removes the attribute. A missing attribute is not an error.
func (x *Xattr) Clear(_ context.Context, path string) error {
	err := unix.Removexattr(path, x.attr)
	if err == nil || errors.Is(err, errNoAttr) {
		return nil
	}
	return fmt.Errorf("removexattr %s: %w", path, err)
}

func getxattr(path string, attr string) ([]byte, error) {
	for {
		size, err := unix.Getxattr(path, attr, nil)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return nil, nil
		}

		buf := make([]byte, size)
		n, err := unix.Getxattr(path, attr, buf)
		// the attribute grew between the two calls
		if errors.Is(err, unix.ERANGE) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	}
}
