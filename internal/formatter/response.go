package formatter

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/shared"
)

// FallbackErrorMessage is shown when a failed response carries no usable error field.
const FallbackErrorMessage = "Unknown error occurred"

// SpeedupUnavailable is shown instead of a speedup that cannot be represented.
const SpeedupUnavailable = "N/A"

type rawTiming struct {
	Sequential *float64 `json:"sequential"`
	Parallel   *float64 `json:"parallel"`
}

type rawResponse struct {
	Results *[]models.MatchResult `json:"results"`
	Timing  *rawTiming            `json:"timing"`
}

// ParseSearchResponse decodes a successful search body.
//
// Both results (an array, possibly empty) and timing (with numeric sequential and parallel)
// must be present; anything else wraps [shared.ErrMalformedResponse].
func ParseSearchResponse(body []byte) (*models.SearchResponse, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	switch {
	case raw.Results == nil:
		return nil, fmt.Errorf("%w: missing results", shared.ErrMalformedResponse)
	case raw.Timing == nil:
		return nil, fmt.Errorf("%w: missing timing", shared.ErrMalformedResponse)
	case raw.Timing.Sequential == nil || raw.Timing.Parallel == nil:
		return nil, fmt.Errorf("%w: incomplete timing", shared.ErrMalformedResponse)
	}

	results := *raw.Results
	for i := range results {
		if results[i].Keywords == nil {
			results[i].Keywords = []string{}
		}
	}

	return &models.SearchResponse{
		Results: results,
		Timing: models.Timing{
			Sequential: *raw.Timing.Sequential,
			Parallel:   *raw.Timing.Parallel,
		},
	}, nil
}

// ParseErrorMessage extracts the error field of a failed response, or [FallbackErrorMessage].
func ParseErrorMessage(body []byte) string {
	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return FallbackErrorMessage
	}

	msg, ok := payload.Error.(string)
	if !ok || strings.TrimSpace(msg) == "" {
		return FallbackErrorMessage
	}
	return msg
}

// Speedup returns sequential / parallel, and false when the ratio is not a finite number.
func Speedup(t models.Timing) (float64, bool) {
	if t.Parallel == 0 {
		return 0, false
	}
	s := t.Sequential / t.Parallel
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, false
	}
	return s, true
}

// FormatSpeedup renders the speedup with two decimals, or [SpeedupUnavailable].
func FormatSpeedup(t models.Timing) string {
	s, ok := Speedup(t)
	if !ok {
		return SpeedupUnavailable
	}
	return fmt.Sprintf("%.2f", s)
}

// ChartSeries returns the two points of the sequential vs parallel chart.
func ChartSeries(t models.Timing) []models.ChartPoint {
	return []models.ChartPoint{
		{Name: "Sequential", Time: t.Sequential},
		{Name: "Parallel", Time: t.Parallel},
	}
}

// RenderChart draws series as horizontal bars scaled to width cells.
func RenderChart(series []models.ChartPoint, width int) string {
	if width < 1 {
		width = 1
	}

	var peak float64
	label := 0
	for _, p := range series {
		if p.Time > peak && !math.IsInf(p.Time, 0) {
			peak = p.Time
		}
		label = max(label, len(p.Name))
	}

	var b strings.Builder
	for _, p := range series {
		cells := 0
		if peak > 0 && p.Time > 0 {
			cells = max(1, int(math.Round(p.Time/peak*float64(width))))
		}
		fmt.Fprintf(&b, "%-*s │%s %gs\n", label, p.Name, strings.Repeat("█", min(cells, width)), p.Time)
	}
	return b.String()
}
