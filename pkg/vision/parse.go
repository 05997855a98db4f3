package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ParseTags decodes a model reply holding a JSON array of strings. The array
// may be wrapped in a ``` or ```json fence. Anything else is an error.
func ParseTags(content string) ([]string, error) {
	trimmed := strings.TrimSpace(stripCodeFence(content))
	if trimmed == "" {
		return nil, errors.New("empty payload")
	}

	var tags []string
	if err := json.Unmarshal([]byte(trimmed), &tags); err != nil {
		return nil, fmt.Errorf("%w (payload snippet: %s)", err, snippet(content))
	}
	return Normalize(tags), nil
}

// Normalize collapses runs of whitespace in each tag to a single space,
// converts it to NFC, and drops empty and repeated tags while keeping the
// original order. Stored tags are cut at the first newline when read back.
func Normalize(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = norm.NFC.String(strings.Join(strings.Fields(t), " "))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const maxRunes = 160
	runes := []rune(clean)
	if len(runes) > maxRunes {
		clean = string(runes[:maxRunes]) + "..."
	}
	return clean
}
