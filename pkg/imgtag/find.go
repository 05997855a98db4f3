package imgtag

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// ScanOptions controls Find.
type ScanOptions struct {
	// Extensions maps allowed lower-case extensions to MIME types. Defaults to ImageExtensions.
	Extensions map[string]string
	// Recursive descends into subdirectories.
	Recursive bool
	// Exclude holds doublestar patterns matched against paths relative to the root.
	Exclude []string
}

// Find returns the images in root, sorted by path. Hidden files and
// directories are skipped. A root that does not exist or is not a
// directory is an error.
func Find(root string, opts ScanOptions) ([]ImageFile, error) {
	root = filepath.Clean(root)
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	exts := opts.Extensions
	if exts == nil {
		exts = ImageExtensions
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}

	found := []ImageFile{}
	err = godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == root {
				return nil
			}
			if filepath.Base(path)[0] == '.' {
				return godirwalk.SkipThis
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if excluded(filepath.ToSlash(rel), opts.Exclude) {
				klog.V(2).Infof("excluded %s", rel)
				return godirwalk.SkipThis
			}

			if de.IsDir() {
				if !opts.Recursive {
					return godirwalk.SkipThis
				}
				return nil
			}
			if !de.IsRegular() && !de.IsSymlink() {
				return nil
			}

			if i, ok := newImageFile(root, path, exts); ok {
				klog.V(1).Infof("found %s", path)
				found = append(found, i)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Path < found[j].Path
	})
	return found, nil
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Match reports whether path would be returned by Find(root, opts).
func Match(root string, path string, opts ScanOptions) (ImageFile, bool) {
	if !visible(root, path, opts) {
		return ImageFile{}, false
	}
	exts := opts.Extensions
	if exts == nil {
		exts = ImageExtensions
	}
	return newImageFile(filepath.Clean(root), path, exts)
}

// visible reports whether Find would reach path below root, ignoring its extension.
func visible(root string, path string, opts ScanOptions) bool {
	rel, err := filepath.Rel(filepath.Clean(root), path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if !opts.Recursive && len(parts) > 1 {
		return false
	}
	for i, p := range parts {
		if p == "" || p[0] == '.' {
			return false
		}
		if excluded(strings.Join(parts[:i+1], "/"), opts.Exclude) {
			return false
		}
	}
	return true
}

// Dirs returns root and, when recursive, every visible subdirectory Find
// would descend into.
func Dirs(root string, opts ScanOptions) ([]string, error) {
	root = filepath.Clean(root)
	dirs := []string{root}
	if !opts.Recursive {
		return dirs, nil
	}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == root {
				return nil
			}
			if !de.IsDir() {
				return nil
			}
			if filepath.Base(path)[0] == '.' {
				return godirwalk.SkipThis
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if excluded(filepath.ToSlash(rel), opts.Exclude) {
				return godirwalk.SkipThis
			}
			dirs = append(dirs, path)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return dirs, nil
}
