package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tstromberg/imgtagman/pkg/imgtag"
	"github.com/tstromberg/imgtagman/pkg/vision"
)

func newTagCommand(o *options) *cobra.Command {
	var detail string
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add model-suggested tags to images that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.session(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			unlock, err := s.lock()
			if err != nil {
				return err
			}
			defer unlock()

			files, err := s.find(imgtag.VisionExtensions)
			if err != nil {
				return err
			}
			rep := s.runner.Tag(cmd.Context(), files, vision.ParseDetail(detail))
			return finish(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&detail, "detail-level", string(vision.DetailLow), "image detail sent to the model: low or high")
	return cmd
}

func newRemoveCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-tags",
		Short: "Remove the tags of every image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.session(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			unlock, err := s.lock()
			if err != nil {
				return err
			}
			defer unlock()

			files, err := s.find(imgtag.ImageExtensions)
			if err != nil {
				return err
			}
			return finish(cmd.OutOrStdout(), s.runner.Remove(cmd.Context(), files))
		},
	}
}

func newSummaryCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show how many images bear each tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.session(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			files, err := s.find(imgtag.ImageExtensions)
			if err != nil {
				return err
			}
			ti, rep := s.runner.Summarize(cmd.Context(), files)

			w := cmd.OutOrStdout()
			if ti.Len() == 0 {
				fmt.Fprintln(w, "No tags found.")
			} else {
				fmt.Fprintln(w, renderSummary(ti.Sorted(), shouldColorize(w)))
			}
			return failures(rep)
		},
	}
}

func newListCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every image with its tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.session(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			files, err := s.find(imgtag.ImageExtensions)
			if err != nil {
				return err
			}
			rep := s.runner.List(cmd.Context(), files)
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderFiles(rep.Results, shouldColorize(w)))
			return failures(rep)
		},
	}
}

func newSearchCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <tag>",
		Short: "List images bearing a tag, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			files, err := s.find(imgtag.ImageExtensions)
			if err != nil {
				return err
			}
			matches, rep := s.runner.Search(cmd.Context(), files, args[0])
			w := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(w, "No images tagged %q.\n", args[0])
			} else {
				fmt.Fprintln(w, renderFiles(matches, shouldColorize(w)))
			}
			return failures(rep)
		},
	}
}

func newSetCommand(o *options) *cobra.Command {
	var add, del bool
	cmd := &cobra.Command{
		Use:   "set <file> [tag...]",
		Short: "Replace, add to or delete from the tags of one image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := editMode(add, del)
			if err != nil {
				return err
			}
			s, err := o.session(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			tags, err := s.runner.Set(cmd.Context(), args[0], args[1:], mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], strings.Join(tags, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&add, "add", false, "add the tags to the existing ones")
	cmd.Flags().BoolVar(&del, "delete", false, "delete the tags from the existing ones")
	return cmd
}

func editMode(add, del bool) (imgtag.EditMode, error) {
	switch {
	case add && del:
		return 0, fmt.Errorf("--add and --delete are mutually exclusive")
	case add:
		return imgtag.Add, nil
	case del:
		return imgtag.Delete, nil
	default:
		return imgtag.Replace, nil
	}
}

func newExportCommand(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <tag>",
		Short: "Copy images bearing a tag to another directory, tags included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			s, err := o.session(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			files, err := s.find(imgtag.ImageExtensions)
			if err != nil {
				return err
			}
			rep, err := s.runner.Export(cmd.Context(), files, args[0], out)
			if err != nil {
				return err
			}
			return finish(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "destination directory")
	return cmd
}

func newWatchCommand(o *options) *cobra.Command {
	var (
		detail string
		quiet  = imgtag.DefaultQuiet
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tag new images as they appear",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := o.session(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			unlock, err := s.lock()
			if err != nil {
				return err
			}
			defer unlock()

			return s.runner.Watch(cmd.Context(), s.cfg.Directory, imgtag.WatchOptions{
				Scan:   s.cfg.ScanOptions(imgtag.VisionExtensions),
				Detail: vision.ParseDetail(detail),
				Quiet:  quiet,
			})
		},
	}
	cmd.Flags().StringVar(&detail, "detail-level", string(vision.DetailLow), "image detail sent to the model: low or high")
	cmd.Flags().DurationVar(&quiet, "quiet", quiet, "how long a file must be unchanged before it is tagged")
	return cmd
}

func failures(rep *imgtag.Report) error {
	if n := len(rep.Failures()); n > 0 {
		return fmt.Errorf("%d of %d files: %w", n, len(rep.Results), errFailures)
	}
	return nil
}
