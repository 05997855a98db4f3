package imgtag

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/klog/v2"
)

// List reads the current tags of every file.
func (r *Runner) List(ctx context.Context, files []ImageFile) *Report {
	rep := newReport("list")
	return rep.finish(r.forEach(ctx, files, r.Workers.Read, r.readTags))
}

// Search returns the results for files bearing tag, compared case-insensitively.
// The report holds every file that was read.
func (r *Runner) Search(ctx context.Context, files []ImageFile, tag string) ([]Result, *Report) {
	rep := newReport("search")
	rep.finish(r.forEach(ctx, files, r.Workers.Read, r.readTags))

	var matches []Result
	for _, res := range rep.Results {
		if res.Outcome == Read && HasTag(res.Tags, tag) {
			matches = append(matches, res)
		}
	}
	klog.V(1).Infof("%d of %d images have tag %q", len(matches), len(files), tag)
	return matches, rep
}

// HasTag reports whether tags contains tag, ignoring case.
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func (r *Runner) readTags(ctx context.Context, f ImageFile) Result {
	tags, err := r.Store.Read(ctx, f.Path)
	if err != nil {
		return Result{Outcome: Failed, Err: fmt.Errorf("read tags: %w", err)}
	}
	return Result{Outcome: Read, Tags: tags}
}
