package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
	"k8s.io/klog/v2"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini asks Google's Gemini API for tags.
type Gemini struct {
	cfg    Config
	client *genai.Client
}

// NewGemini constructs a Gemini client.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Gemini{cfg: cfg, client: client}, nil
}

// Tag sends img to Gemini and returns the tags it suggests.
func (g *Gemini) Tag(ctx context.Context, img Image, detail Detail) ([]string, error) {
	data, mimeType, err := downscale(img, g.cfg.MaxDimension)
	if err != nil {
		return nil, err
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(Prompt(g.cfg.maxTags(), g.cfg.language())),
		}, genai.RoleUser),
	}
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		MediaResolution:  mediaResolution(detail),
	}

	klog.V(1).Infof("requesting tags for %s from %s (%s, detail=%s)", img.Path, g.cfg.Model, mimeType, detail)
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, gc)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	content := resp.Text()
	klog.V(2).Infof("%s: model replied %q", img.Path, content)

	tags, err := ParseTags(content)
	if err != nil {
		klog.Errorf("%s: failed to parse model reply as a JSON array: %v", img.Path, err)
		return []string{}, nil
	}
	return limit(img.Path, tags, g.cfg.maxTags()), nil
}

func mediaResolution(d Detail) genai.MediaResolution {
	if ParseDetail(string(d)) == DetailHigh {
		return genai.MediaResolutionHigh
	}
	return genai.MediaResolutionLow
}
