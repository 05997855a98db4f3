package imgtag

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is how processing one file ended.
type Outcome string

const (
	// Tagged files had no tags and were given the model's tags.
	Tagged Outcome = "tagged"
	// Skipped files already had tags.
	Skipped Outcome = "skipped"
	// Empty files had no tags and the model produced none.
	Empty Outcome = "empty"
	// Removed files had their tags cleared.
	Removed Outcome = "removed"
	// Untouched files had no tags to remove.
	Untouched Outcome = "untouched"
	// Read files had their tags read.
	Read Outcome = "read"
	// Exported files were copied with their tags.
	Exported Outcome = "exported"
	// Failed files hit an error.
	Failed Outcome = "failed"
)

// Result is the outcome for one file.
type Result struct {
	File    ImageFile
	Outcome Outcome
	Tags    []string
	Err     error
}

// Report aggregates the results of one run.
type Report struct {
	ID        string
	Operation string
	Started   time.Time
	Duration  time.Duration
	Results   []Result
}

func newReport(op string) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Operation: op,
		Started:   time.Now(),
	}
}

func (r *Report) finish(results []Result) *Report {
	r.Results = results
	r.Duration = time.Since(r.Started)
	return r
}

// Counts returns the number of results per outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := map[Outcome]int{}
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	return counts
}

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	var fs []Result
	for _, res := range r.Results {
		if res.Outcome == Failed {
			fs = append(fs, res)
		}
	}
	return fs
}
