package usertags

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

// keywordsField is the exiftool tag written by Lightroom, Photos and friends.
var keywordsField = "Keywords"

// Exif stores tags as embedded IPTC/XMP keywords using a long-running
// exiftool process. Unlike xattrs, these survive copies and uploads.
type Exif struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewExif starts exiftool.
func NewExif() (*Exif, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	return &Exif{et: et}, nil
}

// Close stops the exiftool process.
func (e *Exif) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.et.Close()
}

func (e *Exif) extract(path string) (exiftool.FileMetadata, error) {
	fis := e.et.ExtractMetadata(path)
	if len(fis) == 0 {
		return exiftool.FileMetadata{}, fmt.Errorf("extract %q: no metadata returned", path)
	}
	if fis[0].Err != nil {
		return fis[0], fmt.Errorf("extract fail for %q: %w", path, fis[0].Err)
	}
	return fis[0], nil
}

// Read returns the keywords embedded in path.
func (e *Exif) Read(_ context.Context, path string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fi, err := e.extract(path)
	if err != nil {
		return nil, err
	}

	tags, err := fi.GetStrings(keywordsField)
	if errors.Is(err, exiftool.ErrKeyNotFound) {
		klog.V(2).Infof("%s: no %s", path, keywordsField)
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", keywordsField, err)
	}
	return tags, nil
}

// Write replaces the keywords embedded in path.
func (e *Exif) Write(_ context.Context, path string, tags []string) error {
	return e.update(path, func(fi exiftool.FileMetadata) {
		fi.SetStrings(keywordsField, tags)
	})
}

// Clear removes the keywords embedded in path. exiftool reports an
// unchanged file as a failure, so files without keywords are left alone.
func (e *Exif) Clear(ctx context.Context, path string) error {
	tags, err := e.Read(ctx, path)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	return e.update(path, func(fi exiftool.FileMetadata) {
		fi.Clear(keywordsField)
	})
}

// update writes only the fields set by fn. Writing back extracted metadata
// would include pseudo-tags such as FileName and Directory.
func (e *Exif) update(path string, fn func(exiftool.FileMetadata)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fi := exiftool.EmptyFileMetadata()
	fi.File = path
	fn(fi)

	fis := []exiftool.FileMetadata{fi}
	e.et.WriteMetadata(fis)
	if fis[0].Err != nil {
		return fmt.Errorf("write metadata for %s: %w", path, fis[0].Err)
	}
	return nil
}
