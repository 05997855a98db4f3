package imgtag

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/tstromberg/imgtagman/pkg/usertags"
	"github.com/tstromberg/imgtagman/pkg/vision"
)

// Runner runs directory-wide operations with injected dependencies.
type Runner struct {
	Store usertags.Store
	// Vision is only needed by Tag, TagFile and Watch.
	Vision  vision.Tagger
	Workers Workers
	// FileTimeout bounds the work done for a single file. 0 disables it.
	FileTimeout time.Duration
	// DryRun stops Export from copying files. Tag writes are handled by the Store.
	DryRun bool

	readFile func(string) ([]byte, error)
}

// NewRunner returns a Runner configured from c.
func NewRunner(c *Config, s usertags.Store, v vision.Tagger) *Runner {
	return &Runner{
		Store:       s,
		Vision:      v,
		Workers:     c.Workers,
		FileTimeout: c.FileTimeout.Duration,
		DryRun:      c.DryRun,
	}
}

func (r *Runner) read(path string) ([]byte, error) {
	if r.readFile != nil {
		return r.readFile(path)
	}
	return os.ReadFile(path)
}

// fileContext applies the per-file timeout.
func (r *Runner) fileContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.FileTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.FileTimeout)
}

// forEach runs fn for every file using at most workers goroutines. Results
// are returned in the order of files. fn must not panic; errors belong in
// the Result.
func (r *Runner) forEach(ctx context.Context, files []ImageFile, workers int, fn func(context.Context, ImageFile) Result) []Result {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{File: f, Outcome: Failed, Err: err}
				return nil
			}
			fctx, cancel := r.fileContext(ctx)
			defer cancel()

			res := fn(fctx, f)
			res.File = f
			if res.Err != nil {
				klog.Errorf("%s: %v", f.Path, res.Err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
