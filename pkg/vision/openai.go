package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultHTTPTimeout = 60 * time.Second
	maxResponseTokens  = 300
)

// OpenAI talks to an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	cfg        Config
	httpClient *http.Client
}

// OpenAIOption customizes the client.
type OpenAIOption func(*OpenAI)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(c *OpenAI) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewOpenAI constructs a chat completions client.
func NewOpenAI(cfg Config, opts ...OpenAIOption) *OpenAI {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	timeout := defaultHTTPTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	c := &OpenAI{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vision request: http %d: %s", e.StatusCode, snippet(e.Body))
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Tag sends img to the model and returns the tags it suggests.
func (c *OpenAI) Tag(ctx context.Context, img Image, detail Detail) ([]string, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.New("vision: api key required")
	}
	data, mimeType, err := downscale(img, c.cfg.MaxDimension)
	if err != nil {
		return nil, err
	}

	payload := chatRequest{
		Model:     c.cfg.Model,
		MaxTokens: maxResponseTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: Prompt(c.cfg.maxTags(), c.cfg.language())},
				{Type: "image_url", ImageURL: &imageURL{
					URL:    "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
					Detail: string(ParseDetail(string(detail))),
				}},
			},
		}},
	}

	klog.V(1).Infof("requesting tags for %s from %s (%s, detail=%s)", img.Path, c.cfg.Model, mimeType, detail)
	content, err := c.complete(ctx, payload)
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("%s: model replied %q", img.Path, content)

	tags, err := ParseTags(content)
	if err != nil {
		klog.Errorf("%s: failed to parse model reply as a JSON array: %v", img.Path, err)
		return []string{}, nil
	}
	return limit(img.Path, tags, c.cfg.maxTags()), nil
}

func (c *OpenAI) complete(ctx context.Context, payload chatRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("vision request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("vision request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("vision request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("vision request: decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("vision request: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("vision request: empty choices")
	}

	choice := completion.Choices[0]
	if choice.Message.Refusal != "" {
		klog.Warningf("model refused: %s", choice.Message.Refusal)
	}
	return choice.Message.Content, nil
}
