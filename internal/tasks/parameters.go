package tasks

import (
	"strconv"
	"strings"

	"github.com/desertthunder/kwscan/internal/models"
)

// DefaultWorkers is the worker count offered before the user enters one.
const DefaultWorkers = 4

// RawParameters holds the search form exactly as entered.
type RawParameters struct {
	Keywords   string
	ExactMatch bool
	Workers    string
}

// NewRawParameters builds form input from typed values.
func NewRawParameters(keywords string, exact bool, workers int) RawParameters {
	return RawParameters{Keywords: keywords, ExactMatch: exact, Workers: strconv.Itoa(workers)}
}

// ParseWorkers reads a worker count; ok is false when raw is not a whole number.
func ParseWorkers(raw string) (n int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ClampWorkers bounds n to [1, maxCores]. A maxCores below one is treated as one.
func ClampWorkers(n, maxCores int) int {
	return max(1, min(n, max(1, maxCores)))
}

// DefaultWorkerCount is [DefaultWorkers] bounded by maxCores.
func DefaultWorkerCount(maxCores int) int {
	return ClampWorkers(DefaultWorkers, maxCores)
}

// Validate checks the form against the selected files and returns the parameters to send.
//
// Keywords pass through unmodified; an empty string is allowed and left to the service.
func Validate(files models.FileSet, raw RawParameters, maxCores int) (models.SearchParameters, error) {
	if files.Empty() {
		return models.SearchParameters{}, newSearchError(ValidationError, MsgSelectFolder, nil)
	}

	n, ok := ParseWorkers(raw.Workers)
	if !ok {
		return models.SearchParameters{}, newSearchError(ValidationError, MsgInvalidWorkers, nil)
	}

	return models.SearchParameters{
		Keywords:   raw.Keywords,
		ExactMatch: raw.ExactMatch,
		NumWorkers: ClampWorkers(n, maxCores),
	}, nil
}
