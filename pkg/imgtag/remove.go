package imgtag

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"
)

// RemoveFile clears the tags of f if it has any.
func (r *Runner) RemoveFile(ctx context.Context, f ImageFile) Result {
	tags, err := r.Store.Read(ctx, f.Path)
	if err != nil {
		return Result{File: f, Outcome: Failed, Err: fmt.Errorf("read tags: %w", err)}
	}
	if len(tags) == 0 {
		klog.V(1).Infof("no tags found for %s", f.Path)
		return Result{File: f, Outcome: Untouched}
	}

	if err := r.Store.Clear(ctx, f.Path); err != nil {
		return Result{File: f, Outcome: Failed, Tags: tags, Err: fmt.Errorf("clear tags: %w", err)}
	}
	klog.Infof("removed tags from %s: %v", f.Path, tags)
	return Result{File: f, Outcome: Removed, Tags: tags}
}

// Remove runs RemoveFile over files.
func (r *Runner) Remove(ctx context.Context, files []ImageFile) *Report {
	rep := newReport("remove-tags")
	klog.Infof("removing tags from %d images (workers=%d)", len(files), r.Workers.Remove)
	return rep.finish(r.forEach(ctx, files, r.Workers.Remove, r.RemoveFile))
}
