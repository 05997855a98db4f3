package usertags

import (
	"fmt"
	"strings"

	"howett.net/plist"
)

// Encode serializes tags as an XML property-list array of strings.
func Encode(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	bs, err := plist.MarshalIndent(tags, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("encode plist: %w", err)
	}
	return bs, nil
}

// Decode parses an XML or binary property-list array of strings.
//
// Finder stores a label colour after a newline ("Red\n6"); only the name is
// kept. ErrNoTags is returned for an empty payload or an empty array.
func Decode(data []byte) ([]string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrNoTags
	}

	var raw []string
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode plist: %w", err)
	}

	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if name, _, ok := strings.Cut(t, "\n"); ok {
			t = name
		}
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		tags = append(tags, t)
	}

	if len(tags) == 0 {
		return nil, ErrNoTags
	}
	return tags, nil
}
