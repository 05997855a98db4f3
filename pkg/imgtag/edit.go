package imgtag

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/tstromberg/imgtagman/pkg/vision"
)

// EditMode selects how Set combines new tags with existing ones.
type EditMode int

const (
	// Replace overwrites the existing tags.
	Replace EditMode = iota
	// Add appends tags that are not already present.
	Add
	// Delete drops the given tags, ignoring case.
	Delete
)

// Set edits the tags of a single file by hand. Unlike TagFile it does not
// leave already-tagged files alone. An edit that leaves no tags clears the
// metadata.
func (r *Runner) Set(ctx context.Context, path string, tags []string, mode EditMode) ([]string, error) {
	tags = vision.Normalize(tags)

	var existing []string
	if mode != Replace {
		var err error
		existing, err = r.Store.Read(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("read tags: %w", err)
		}
	}

	var updated []string
	switch mode {
	case Replace:
		updated = tags
	case Add:
		updated = append(append([]string{}, existing...), tags...)
		updated = vision.Normalize(updated)
	case Delete:
		for _, t := range existing {
			if !HasTag(tags, t) {
				updated = append(updated, t)
			}
		}
	default:
		return nil, fmt.Errorf("unknown edit mode %d", mode)
	}

	if len(updated) == 0 {
		klog.Infof("clearing tags of %s", path)
		if err := r.Store.Clear(ctx, path); err != nil {
			return nil, fmt.Errorf("clear tags: %w", err)
		}
		return []string{}, nil
	}

	klog.Infof("setting tags of %s: %v", path, updated)
	if err := r.Store.Write(ctx, path, updated); err != nil {
		return nil, fmt.Errorf("write tags: %w", err)
	}
	return updated, nil
}
