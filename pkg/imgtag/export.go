package imgtag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// Export copies every file bearing tag into dest, keeping paths relative to
// the scanned directory. Copies do not carry extended attributes, so the tags
// are written to each copy through the Store.
func (r *Runner) Export(ctx context.Context, files []ImageFile, tag string, dest string) (*Report, error) {
	if !r.DryRun {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}

	rep := newReport("export")
	klog.Infof("exporting images tagged %q to %s", tag, dest)
	return rep.finish(r.forEach(ctx, files, r.Workers.Read, func(ctx context.Context, f ImageFile) Result {
		tags, err := r.Store.Read(ctx, f.Path)
		if err != nil {
			return Result{Outcome: Failed, Err: fmt.Errorf("read tags: %w", err)}
		}
		if !HasTag(tags, tag) {
			return Result{Outcome: Untouched, Tags: tags}
		}

		out := filepath.Join(dest, f.RelPath)
		if r.DryRun {
			klog.Infof("[dry-run] would copy %s to %s", f.Path, out)
			return Result{Outcome: Exported, Tags: tags}
		}
		klog.V(1).Infof("copying %s to %s", f.Path, out)
		if err := copy.Copy(f.Path, out, copy.Options{PreserveTimes: true}); err != nil {
			return Result{Outcome: Failed, Tags: tags, Err: fmt.Errorf("copy: %w", err)}
		}
		if err := r.Store.Write(ctx, out, tags); err != nil {
			return Result{Outcome: Failed, Tags: tags, Err: fmt.Errorf("write tags: %w", err)}
		}
		return Result{Outcome: Exported, Tags: tags}
	})), nil
}
