package formatter

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/shared"
)

func TestParseSearchResponse(t *testing.T) {
	t.Run("empty results", func(t *testing.T) {
		resp, err := ParseSearchResponse([]byte(`{"results": [], "timing": {"sequential": 10, "parallel": 2}}`))
		if err != nil {
			t.Fatalf("ParseSearchResponse() error = %v", err)
		}
		if len(resp.Results) != 0 {
			t.Errorf("expected no results, got %d", len(resp.Results))
		}
		if resp.Timing.Sequential != 10 || resp.Timing.Parallel != 2 {
			t.Errorf("unexpected timing: %+v", resp.Timing)
		}
	})

	t.Run("results in order", func(t *testing.T) {
		body := `{
			"results": [
				{"file": "a.txt", "location": "Line 3", "keywords": ["error", "fatal"], "content": "fatal error here"},
				{"file": "b.pdf", "location": "Page 1, Line 2", "keywords": ["error"], "content": "an error"}
			],
			"timing": {"sequential": 0.5, "parallel": 0.25}
		}`
		resp, err := ParseSearchResponse([]byte(body))
		if err != nil {
			t.Fatalf("ParseSearchResponse() error = %v", err)
		}
		if len(resp.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(resp.Results))
		}
		first := resp.Results[0]
		if first.File != "a.txt" || first.Location != "Line 3" || first.Content != "fatal error here" {
			t.Errorf("unexpected first result: %+v", first)
		}
		if strings.Join(first.Keywords, ",") != "error,fatal" {
			t.Errorf("expected keyword order preserved, got %v", first.Keywords)
		}
		if resp.Results[1].Location != "Page 1, Line 2" {
			t.Errorf("unexpected second result: %+v", resp.Results[1])
		}
	})

	t.Run("missing keywords become empty", func(t *testing.T) {
		resp, err := ParseSearchResponse([]byte(`{"results": [{"file": "a"}], "timing": {"sequential": 1, "parallel": 1}}`))
		if err != nil {
			t.Fatalf("ParseSearchResponse() error = %v", err)
		}
		if resp.Results[0].Keywords == nil {
			t.Error("expected non-nil keywords slice")
		}
	})

	malformed := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ``},
		{name: "not json", body: `<html>oops</html>`},
		{name: "missing results", body: `{"timing": {"sequential": 1, "parallel": 1}}`},
		{name: "null results", body: `{"results": null, "timing": {"sequential": 1, "parallel": 1}}`},
		{name: "results not array", body: `{"results": {}, "timing": {"sequential": 1, "parallel": 1}}`},
		{name: "missing timing", body: `{"results": []}`},
		{name: "missing parallel", body: `{"results": [], "timing": {"sequential": 1}}`},
		{name: "non-numeric timing", body: `{"results": [], "timing": {"sequential": "1", "parallel": 1}}`},
		{name: "array body", body: `[]`},
	}

	for _, tt := range malformed {
		t.Run("malformed "+tt.name, func(t *testing.T) {
			_, err := ParseSearchResponse([]byte(tt.body))
			if !errors.Is(err, shared.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	tc := []struct {
		name string
		body string
		want string
	}{
		{name: "error field", body: `{"error": "bad format"}`, want: "bad format"},
		{name: "empty body", body: ``, want: FallbackErrorMessage},
		{name: "unparsable body", body: `Internal Server Error`, want: FallbackErrorMessage},
		{name: "missing field", body: `{"detail": "nope"}`, want: FallbackErrorMessage},
		{name: "blank field", body: `{"error": "  "}`, want: FallbackErrorMessage},
		{name: "non-string field", body: `{"error": 42}`, want: FallbackErrorMessage},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseErrorMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("ParseErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpeedup(t *testing.T) {
	t.Run("ratio", func(t *testing.T) {
		timing := models.Timing{Sequential: 10, Parallel: 2}

		s, ok := Speedup(timing)
		if !ok || s != 5 {
			t.Errorf("Speedup() = %v, %v; want 5, true", s, ok)
		}
		if got := FormatSpeedup(timing); got != "5.00" {
			t.Errorf("FormatSpeedup() = %q, want 5.00", got)
		}
	})

	t.Run("zero parallel", func(t *testing.T) {
		timing := models.Timing{Sequential: 10, Parallel: 0}

		s, ok := Speedup(timing)
		if ok || math.IsInf(s, 0) || math.IsNaN(s) {
			t.Errorf("Speedup() = %v, %v; want unavailable", s, ok)
		}
		if got := FormatSpeedup(timing); got != SpeedupUnavailable {
			t.Errorf("FormatSpeedup() = %q, want %q", got, SpeedupUnavailable)
		}
	})

	t.Run("both zero", func(t *testing.T) {
		if got := FormatSpeedup(models.Timing{}); got != SpeedupUnavailable {
			t.Errorf("FormatSpeedup() = %q, want %q", got, SpeedupUnavailable)
		}
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		if got := FormatSpeedup(models.Timing{Sequential: 1, Parallel: 3}); got != "0.33" {
			t.Errorf("FormatSpeedup() = %q, want 0.33", got)
		}
	})
}

func TestChartSeries(t *testing.T) {
	got := ChartSeries(models.Timing{Sequential: 10, Parallel: 2})
	want := []models.ChartPoint{{Name: "Sequential", Time: 10}, {Name: "Parallel", Time: 2}}

	if len(got) != len(want) {
		t.Fatalf("ChartSeries() returned %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRenderChart(t *testing.T) {
	t.Run("scales bars to the slowest time", func(t *testing.T) {
		out := RenderChart(ChartSeries(models.Timing{Sequential: 10, Parallel: 2}), 10)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
		}
		if strings.Count(lines[0], "█") != 10 {
			t.Errorf("expected full bar for sequential, got %q", lines[0])
		}
		if strings.Count(lines[1], "█") != 2 {
			t.Errorf("expected 2 cells for parallel, got %q", lines[1])
		}
	})

	t.Run("zero times draw empty bars", func(t *testing.T) {
		out := RenderChart(ChartSeries(models.Timing{}), 10)
		if strings.Contains(out, "█") {
			t.Errorf("expected no bars, got %q", out)
		}
	})
}
