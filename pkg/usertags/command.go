package usertags

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"k8s.io/klog/v2"
)

// mdlsKey is the Spotlight attribute that mirrors the user tags xattr.
const mdlsKey = "kMDItemUserTags"

// Runner executes an external program and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Command reads tags with mdls and writes them with xattr, the way Finder
// scripts usually do.
type Command struct {
	attr string
	run  Runner
}

// NewCommand returns a Store backed by the mdls and xattr utilities. A nil
// run uses exec.CommandContext.
func NewCommand(attr string, run Runner) *Command {
	if attr == "" {
		attr = "com.apple.metadata:_kMDItemUserTags"
	}
	if run == nil {
		run = execRunner
	}
	return &Command{attr: attr, run: run}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Read returns the tags Spotlight reports for path.
func (c *Command) Read(ctx context.Context, path string) ([]string, error) {
	out, err := c.run(ctx, "mdls", "-raw", "-name", mdlsKey, path)
	if err != nil {
		return nil, err
	}

	tags, err := ParseMDLS(out)
	if errors.Is(err, ErrNoTags) {
		klog.V(2).Infof("%s: no %s", path, mdlsKey)
		return []string{}, nil
	}
	return tags, err
}

// Write replaces the tags on path.
func (c *Command) Write(ctx context.Context, path string, tags []string) error {
	bs, err := Encode(tags)
	if err != nil {
		return err
	}
	if _, err := c.run(ctx, "xattr", "-w", c.attr, string(bs), path); err != nil {
		return err
	}
	return nil
}

// Clear deletes the tag attribute. xattr reporting that the attribute does
// not exist counts as success.
func (c *Command) Clear(ctx context.Context, path string) error {
	_, err := c.run(ctx, "xattr", "-d", c.attr, path)
	if err != nil && strings.Contains(err.Error(), "No such xattr") {
		klog.V(1).Infof("%s: no tags to remove", path)
		return nil
	}
	return err
}

// ParseMDLS parses the text form mdls prints for a string array:
//
//	(
//	    cat,
//	    "red car"
//	)
//
// "(null)" and an empty list yield ErrNoTags.
func ParseMDLS(out []byte) ([]string, error) {
	s := strings.TrimSpace(string(out))
	if s == "" || s == "(null)" {
		return nil, ErrNoTags
	}

	// without -raw the value is prefixed by "kMDItemUserTags = "
	if _, v, ok := strings.Cut(s, "="); ok && strings.HasPrefix(s, mdlsKey) {
		s = strings.TrimSpace(v)
		if s == "(null)" {
			return nil, ErrNoTags
		}
	}

	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("unexpected mdls output: %q", s)
	}
	s = strings.TrimSpace(s[1 : len(s)-1])

	var tags []string
	for s != "" {
		var (
			tag string
			err error
		)
		tag, s, err = nextMDLSItem(s)
		if err != nil {
			return nil, err
		}
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	if len(tags) == 0 {
		return nil, ErrNoTags
	}
	return tags, nil
}

// nextMDLSItem consumes one comma-separated item, honoring quotes and
// backslash escapes.
func nextMDLSItem(s string) (string, string, error) {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" {
		return "", "", nil
	}

	if s[0] != '"' {
		item, rest, _ := strings.Cut(s, ",")
		return strings.TrimSpace(item), rest, nil
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			rest := strings.TrimLeft(s[i+1:], " \t\r\n")
			rest = strings.TrimPrefix(rest, ",")
			return b.String(), rest, nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", "", fmt.Errorf("unterminated quote in mdls output: %q", s)
}
