package imgtag

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/tstromberg/imgtagman/pkg/vision"
)

// TagFile gives f the model's tags unless it is already tagged.
func (r *Runner) TagFile(ctx context.Context, f ImageFile, detail vision.Detail) Result {
	existing, err := r.Store.Read(ctx, f.Path)
	if err != nil {
		return Result{File: f, Outcome: Failed, Err: fmt.Errorf("read tags: %w", err)}
	}
	if len(existing) > 0 {
		klog.Infof("%s has tags: %v", f.Path, existing)
		return Result{File: f, Outcome: Skipped, Tags: existing}
	}

	if r.Vision == nil {
		return Result{File: f, Outcome: Failed, Err: errors.New("no vision client configured")}
	}
	bs, err := r.read(f.Path)
	if err != nil {
		return Result{File: f, Outcome: Failed, Err: fmt.Errorf("read image: %w", err)}
	}

	tags, err := r.Vision.Tag(ctx, vision.Image{Path: f.Path, MIMEType: f.MIMEType, Data: bs}, detail)
	if err != nil {
		return Result{File: f, Outcome: Failed, Err: fmt.Errorf("vision: %w", err)}
	}
	if len(tags) == 0 {
		klog.Warningf("no tags were generated for %s", f.Path)
		return Result{File: f, Outcome: Empty}
	}

	klog.Infof("adding tags to %s: %v", f.Path, tags)
	if err := r.Store.Write(ctx, f.Path, tags); err != nil {
		return Result{File: f, Outcome: Failed, Tags: tags, Err: fmt.Errorf("write tags: %w", err)}
	}
	return Result{File: f, Outcome: Tagged, Tags: tags}
}

// Tag runs TagFile over files.
func (r *Runner) Tag(ctx context.Context, files []ImageFile, detail vision.Detail) *Report {
	rep := newReport("tag")
	klog.Infof("tagging %d images (detail=%s, workers=%d)", len(files), detail, r.Workers.Tag)
	return rep.finish(r.forEach(ctx, files, r.Workers.Tag, func(ctx context.Context, f ImageFile) Result {
		return r.TagFile(ctx, f, detail)
	}))
}
