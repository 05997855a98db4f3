package usertags

import (
	"context"

	"k8s.io/klog/v2"
)

// DryRun wraps a Store, passing reads through and logging writes and clears
// without performing them.
type DryRun struct {
	inner Store
}

// NewDryRun wraps s.
func NewDryRun(s Store) *DryRun {
	return &DryRun{inner: s}
}

// Read reads from the wrapped Store.
func (d *DryRun) Read(ctx context.Context, path string) ([]string, error) {
	return d.inner.Read(ctx, path)
}

// Write logs the tags that would have been written.
func (d *DryRun) Write(_ context.Context, path string, tags []string) error {
	klog.Infof("[dry-run] would tag %s: %v", path, tags)
	return nil
}

// Clear logs the tags that would have been removed.
func (d *DryRun) Clear(_ context.Context, path string) error {
	klog.Infof("[dry-run] would clear tags on %s", path)
	return nil
}
