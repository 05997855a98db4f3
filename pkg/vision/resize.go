package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

var jpegQuality = 85

// downscale shrinks JPEG and PNG images whose longest side exceeds maxDim.
// Other formats, and images already small enough, are returned untouched.
func downscale(img Image, maxDim int) ([]byte, string, error) {
	if maxDim <= 0 {
		return img.Data, img.MIMEType, nil
	}

	var enc imgio.Encoder
	switch img.MIMEType {
	case "image/jpeg":
		enc = imgio.JPEGEncoder(jpegQuality)
	case "image/png":
		enc = imgio.PNGEncoder()
	default:
		return img.Data, img.MIMEType, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, "", fmt.Errorf("decode config %s: %w", img.Path, err)
	}
	x, y := scaled(cfg.Width, cfg.Height, maxDim)
	if x == cfg.Width && y == cfg.Height {
		return img.Data, img.MIMEType, nil
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", img.Path, err)
	}

	klog.V(1).Infof("resizing %s from %dx%d to %dx%d", img.Path, cfg.Width, cfg.Height, x, y)
	var buf bytes.Buffer
	if err := enc(&buf, transform.Resize(src, x, y, transform.Linear)); err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", img.Path, err)
	}
	return buf.Bytes(), img.MIMEType, nil
}

// scaled returns dimensions whose longest side is at most maxDim, keeping the aspect ratio.
func scaled(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}
