package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/tstromberg/imgtagman/pkg/imgtag"
	"github.com/tstromberg/imgtagman/pkg/usertags"
	"github.com/tstromberg/imgtagman/pkg/vision"
)

// errFailures means the run finished but some files failed.
var errFailures = errors.New("some files failed")

type options struct {
	configPath string
	directory  string
	store      string
	dryRun     bool
	recursive  bool
	exclude    []string
	workers    int
}

func newRootCommand() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "imgtagman",
		Short:         "Tag images with keywords from a vision model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "path to config.toml (default ~/.config/imgtagman/config.toml)")
	pf.StringVarP(&o.directory, "directory", "d", "", "directory of images (default: IMAGE_DIRECTORY or the working directory)")
	pf.StringVar(&o.store, "store", "", "tag store: xattr, command or exiftool")
	pf.BoolVarP(&o.dryRun, "dry-run", "n", false, "log changes instead of writing them")
	pf.BoolVarP(&o.recursive, "recursive", "r", false, "descend into subdirectories")
	pf.StringSliceVar(&o.exclude, "exclude", nil, "glob patterns to skip, relative to the directory")
	pf.IntVar(&o.workers, "workers", 0, "concurrent workers for every operation (default from config)")
	pf.AddGoFlagSet(flag.CommandLine)

	root.AddCommand(
		newTagCommand(o),
		newRemoveCommand(o),
		newSummaryCommand(o),
		newListCommand(o),
		newSearchCommand(o),
		newSetCommand(o),
		newExportCommand(o),
		newWatchCommand(o),
	)
	return root
}

// config loads the configuration file and environment, then applies flags
// the user actually set.
func (o *options) config(cmd *cobra.Command) (*imgtag.Config, error) {
	c, err := imgtag.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if o.directory != "" {
		c.Directory = o.directory
	}
	if flags.Changed("store") {
		c.Store = o.store
	}
	if flags.Changed("dry-run") {
		c.DryRun = o.dryRun
	}
	if flags.Changed("recursive") {
		c.Recursive = o.recursive
	}
	if flags.Changed("exclude") {
		c.Exclude = o.exclude
	}
	if flags.Changed("workers") {
		c.Workers = imgtag.Workers{Tag: o.workers, Summary: o.workers, Remove: o.workers, Read: o.workers}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// session is what a command needs to run.
type session struct {
	cfg    *imgtag.Config
	runner *imgtag.Runner
	closer func() error
}

func (s *session) Close() {
	if err := s.closer(); err != nil {
		klog.Errorf("close store: %v", err)
	}
}

func (o *options) session(cmd *cobra.Command, needVision bool) (*session, error) {
	c, err := o.config(cmd)
	if err != nil {
		return nil, err
	}

	var v vision.Tagger
	if needVision {
		if err := c.RequireAPIKey(); err != nil {
			return nil, err
		}
		v, err = vision.New(cmd.Context(), c.VisionConfig())
		if err != nil {
			return nil, fmt.Errorf("vision: %w", err)
		}
	}

	s, closer, err := usertags.New(c.StoreOptions())
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("using %s store (dry-run=%v) on %s", c.Store, c.DryRun, c.Directory)
	return &session{cfg: c, runner: imgtag.NewRunner(c, s, v), closer: closer}, nil
}

func (s *session) find(exts map[string]string) ([]imgtag.ImageFile, error) {
	files, err := imgtag.Find(s.cfg.Directory, s.cfg.ScanOptions(exts))
	if err != nil {
		return nil, err
	}
	klog.Infof("found %d images in %s", len(files), s.cfg.Directory)
	return files, nil
}

// lock takes the directory lock unless this is a dry run.
func (s *session) lock() (func(), error) {
	if s.cfg.DryRun {
		return func() {}, nil
	}
	l, err := imgtag.AcquireLock(s.cfg.Directory)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := l.Release(); err != nil {
			klog.Errorf("%v", err)
		}
	}, nil
}

// finish prints the report and turns failures into a non-zero exit.
func finish(w io.Writer, rep *imgtag.Report) error {
	fmt.Fprintln(w, renderReport(rep, shouldColorize(w)))
	return failures(rep)
}
