package imgtag

import (
	"path/filepath"
	"strings"
)

// VisionExtensions are the formats sent to the vision model.
var VisionExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageExtensions are every format whose tags can be read, summarized or removed.
var ImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// ImageFile is an image discovered by Find.
type ImageFile struct {
	// Path is the path as passed to the Store and the vision client.
	Path string
	// RelPath is Path relative to the scanned directory.
	RelPath string
	// Ext is the lower-case extension, including the dot.
	Ext      string
	MIMEType string
}

func newImageFile(root string, path string, exts map[string]string) (ImageFile, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	mt, ok := exts[ext]
	if !ok {
		return ImageFile{}, false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return ImageFile{Path: path, RelPath: rel, Ext: ext, MIMEType: mt}, true
}
