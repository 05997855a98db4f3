package imgtag

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"k8s.io/klog/v2"
)

// MaxExampleFiles is how many paths are kept per tag.
var MaxExampleFiles = 5

// TagCount is one row of a summary.
type TagCount struct {
	Tag   string
	Count int
	// Files holds up to MaxExampleFiles paths bearing the tag.
	Files []string
}

// TagIndex counts files per tag. It is safe for concurrent use.
type TagIndex struct {
	mu   sync.Mutex
	tags map[string]*TagCount
}

// NewTagIndex returns an empty index.
func NewTagIndex() *TagIndex {
	return &TagIndex{tags: map[string]*TagCount{}}
}

// Add records that path bears tags.
func (ti *TagIndex) Add(path string, tags []string) {
	ti.mu.Lock()
	defer ti.mu.Unlock()

	seen := map[string]bool{}
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true

		tc := ti.tags[t]
		if tc == nil {
			tc = &TagCount{Tag: t}
			ti.tags[t] = tc
		}
		tc.Count++
		if len(tc.Files) < MaxExampleFiles {
			tc.Files = append(tc.Files, path)
		}
	}
}

// Len returns the number of distinct tags.
func (ti *TagIndex) Len() int {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	return len(ti.tags)
}

// Sorted returns rows by descending count, then by tag.
func (ti *TagIndex) Sorted() []TagCount {
	ti.mu.Lock()
	defer ti.mu.Unlock()

	rows := make([]TagCount, 0, len(ti.tags))
	for _, tc := range ti.tags {
		files := make([]string, len(tc.Files))
		copy(files, tc.Files)
		rows = append(rows, TagCount{Tag: tc.Tag, Count: tc.Count, Files: files})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Tag < rows[j].Tag
	})
	return rows
}

// Summarize reads the tags of every file into a TagIndex.
func (r *Runner) Summarize(ctx context.Context, files []ImageFile) (*TagIndex, *Report) {
	ti := NewTagIndex()
	rep := newReport("summary")
	klog.Infof("summarizing tags of %d images (workers=%d)", len(files), r.Workers.Summary)

	rep.finish(r.forEach(ctx, files, r.Workers.Summary, func(ctx context.Context, f ImageFile) Result {
		tags, err := r.Store.Read(ctx, f.Path)
		if err != nil {
			return Result{Outcome: Failed, Err: fmt.Errorf("read tags: %w", err)}
		}
		ti.Add(f.Path, tags)
		return Result{Outcome: Read, Tags: tags}
	}))
	return ti, rep
}
