package imgtag

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"

	"github.com/tstromberg/imgtagman/pkg/vision"
)

// DefaultQuiet is how long a path must be idle before it is tagged.
const DefaultQuiet = 2 * time.Second

// Debouncer collapses repeated events for a path into one batch emitted
// after a quiet period.
type Debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	out     chan []string
	done    chan struct{}
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  map[string]struct{}{},
		out:      make(chan []string, 16),
		done:     make(chan struct{}),
	}
}

// Output receives sorted batches of paths.
func (d *Debouncer) Output() <-chan []string {
	return d.out
}

// Add records path and restarts the quiet period.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

// Stop discards pending paths.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	select {
	case <-d.done:
	default:
		close(d.done)
	}
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(d.pending))
	for p := range d.pending {
		batch = append(batch, p)
	}
	d.pending = map[string]struct{}{}
	d.mu.Unlock()

	sort.Strings(batch)
	select {
	case d.out <- batch:
	case <-d.done:
	}
}

// WatchOptions controls Watch.
type WatchOptions struct {
	Scan   ScanOptions
	Detail vision.Detail
	// Quiet defaults to DefaultQuiet.
	Quiet time.Duration
	// OnReport, if set, is called after every batch.
	OnReport func(*Report)
	// ready, if set, is closed once the watches are in place.
	ready chan struct{}
}

// Watch tags images as they are created or written in root until ctx is
// cancelled. Files that already have tags are left alone, as with Tag.
func (r *Runner) Watch(ctx context.Context, root string, opts WatchOptions) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	dirs, err := Dirs(root, opts.Scan)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	klog.Infof("watching %d dirs ...", len(dirs))

	quiet := opts.Quiet
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	deb := NewDebouncer(quiet)
	defer deb.Stop()

	if opts.ready != nil {
		close(opts.ready)
	}

	for {
		select {
		case <-ctx.Done():
			klog.Infof("watch stopped: %v", ctx.Err())
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(2).Infof("event: %s", event)
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if opts.Scan.Recursive && event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					r.watchNewDir(w, root, event.Name, opts.Scan)
					continue
				}
			}
			if _, ok := Match(root, event.Name, opts.Scan); ok {
				deb.Add(event.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)

		case batch := <-deb.Output():
			files := r.pendingFiles(root, batch, opts.Scan)
			if len(files) == 0 {
				continue
			}
			rep := r.Tag(ctx, files, opts.Detail)
			klog.Infof("watch batch %s: %v", rep.ID, rep.Counts())
			if opts.OnReport != nil {
				opts.OnReport(rep)
			}
		}
	}
}

// watchNewDir adds a directory created while watching, along with any
// subdirectories it already has. Adding a watched path again is a no-op.
func (r *Runner) watchNewDir(w *fsnotify.Watcher, root string, dir string, opts ScanOptions) {
	if !visible(root, dir, opts) {
		return
	}
	dirs, err := Dirs(root, opts)
	if err != nil {
		klog.Errorf("scan %s: %v", root, err)
		return
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			klog.Errorf("watch %s: %v", d, err)
		}
	}
	klog.V(1).Infof("now watching %s", dir)
}

// pendingFiles keeps the paths from batch that still exist as regular files.
func (r *Runner) pendingFiles(root string, batch []string, opts ScanOptions) []ImageFile {
	files := []ImageFile{}
	for _, p := range batch {
		f, ok := Match(root, p, opts)
		if !ok {
			continue
		}
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			klog.V(1).Infof("%s is gone, skipping", p)
			continue
		}
		files = append(files, f)
	}
	return files
}
