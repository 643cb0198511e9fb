package models

import (
	"path/filepath"
	"time"
)

// SelectedFile is a single file chosen for upload.
type SelectedFile struct {
	Name string // Slash-separated path relative to the selected folder
	Path string // Location on disk used to read the content
	Size int64  // Size in bytes at selection time
}

// FileSet is the ordered set of files selected from a folder.
//
// No filtering or deduplication is applied; the search service decides what it can read.
type FileSet struct {
	Root  string
	Files []SelectedFile
}

// Empty reports whether the set holds no files.
func (s FileSet) Empty() bool { return len(s.Files) == 0 }

// Len returns the number of files in the set.
func (s FileSet) Len() int { return len(s.Files) }

// TotalSize returns the combined size of all files in bytes.
func (s FileSet) TotalSize() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}
	return total
}

// BaseName returns the name of the selected folder.
func (s FileSet) BaseName() string {
	if s.Root == "" {
		return ""
	}
	return filepath.Base(s.Root)
}

// SearchParameters are the scalar form fields sent with a search.
type SearchParameters struct {
	Keywords   string `json:"keywords" yaml:"keywords"`     // Comma-separated, split by the service
	ExactMatch bool   `json:"exactMatch" yaml:"exactMatch"` // Whole-word matching
	NumWorkers int    `json:"numWorkers" yaml:"numWorkers"` // Always within [1, maxCores] when sent
}

// MatchResult is one matching line reported by the search service.
type MatchResult struct {
	File     string   `json:"file" yaml:"file"`
	Location string   `json:"location" yaml:"location"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Content  string   `json:"content" yaml:"content"`
}

// Timing holds the service's sequential and parallel run times in seconds.
type Timing struct {
	Sequential float64 `json:"sequential" yaml:"sequential"`
	Parallel   float64 `json:"parallel" yaml:"parallel"`
}

// SearchResponse is the decoded body of a successful search.
type SearchResponse struct {
	Results []MatchResult `json:"results" yaml:"results"`
	Timing  Timing        `json:"timing" yaml:"timing"`
}

// ChartPoint is a single named point of the timing comparison chart.
type ChartPoint struct {
	Name string  `json:"name" yaml:"name"`
	Time float64 `json:"time" yaml:"time"`
}

// RunStatus is the terminal outcome of a submission.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// SearchRun is a persisted summary of a finished submission.
type SearchRun struct {
	ID         string
	Root       string
	Parameters SearchParameters
	FileCount  int
	TotalBytes int64
	Status     RunStatus
	Error      string
	Timing     *Timing // nil when the search failed
	MatchCount int     // Number of results, set even when Results is not loaded
	Results    []MatchResult
	CreatedAt  time.Time
}

// ResultCount returns the number of match results recorded for the run.
func (r SearchRun) ResultCount() int {
	if r.Results != nil {
		return len(r.Results)
	}
	return r.MatchCount
}
