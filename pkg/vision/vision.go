// Package vision asks a vision-capable language model for descriptive image tags.
package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

// Detail is the quality/cost hint passed to the model.
type Detail string

const (
	DetailLow  Detail = "low"
	DetailHigh Detail = "high"
)

// ParseDetail maps s to a Detail. Anything other than "high" is low.
func ParseDetail(s string) Detail {
	if strings.EqualFold(strings.TrimSpace(s), string(DetailHigh)) {
		return DetailHigh
	}
	return DetailLow
}

// Image is an image held in memory.
type Image struct {
	Path     string
	MIMEType string
	Data     []byte
}

// Tagger returns descriptive tags for an image.
//
// Implementations make exactly one request per call. Transport failures are
// returned as errors; a response that cannot be parsed is logged and yields
// an empty tag set.
type Tagger interface {
	Tag(ctx context.Context, img Image, detail Detail) ([]string, error)
}

// Providers accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds the settings shared by all providers.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	// MaxTags caps the number of tags requested and kept.
	MaxTags int
	// Language the tags are written in.
	Language string
	// MaxDimension downscales JPEG and PNG images whose longest side exceeds it. 0 disables.
	MaxDimension int
	Timeout      time.Duration
}

const (
	defaultMaxTags  = 10
	defaultLanguage = "English"
)

func (c Config) maxTags() int {
	if c.MaxTags <= 0 {
		return defaultMaxTags
	}
	return c.MaxTags
}

func (c Config) language() string {
	if strings.TrimSpace(c.Language) == "" {
		return defaultLanguage
	}
	return strings.TrimSpace(c.Language)
}

// New returns the Tagger for cfg.Provider.
func New(ctx context.Context, cfg Config) (Tagger, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown vision provider %q", cfg.Provider)
	}
}

// limit truncates tags to the configured maximum.
func limit(path string, tags []string, n int) []string {
	if len(tags) <= n {
		return tags
	}
	klog.V(1).Infof("%s: model returned %d tags, keeping %d", path, len(tags), n)
	return tags[:n]
}
