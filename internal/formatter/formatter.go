// package formatter maps search responses into presentational values and exports results to various formats (CSV, Markdown, plain text, JSON, YAML)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format names accepted by [Export].
const (
	FormatText     = "txt"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Report is the exported view of a finished search.
type Report struct {
	Folder  string                  `json:"folder" yaml:"folder"`
	Params  models.SearchParameters `json:"parameters" yaml:"parameters"`
	Timing  models.Timing           `json:"timing" yaml:"timing"`
	Speedup string                  `json:"speedup" yaml:"speedup"`
	Chart   []models.ChartPoint     `json:"chart" yaml:"chart"`
	Results []models.MatchResult    `json:"results" yaml:"results"`
}

// NewReport builds a [Report] from a response and the parameters that produced it.
func NewReport(folder string, params models.SearchParameters, resp *models.SearchResponse) Report {
	return Report{
		Folder:  folder,
		Params:  params,
		Timing:  resp.Timing,
		Speedup: FormatSpeedup(resp.Timing),
		Chart:   ChartSeries(resp.Timing),
		Results: resp.Results,
	}
}

// ParseFormat resolves a format name or alias to one of the Format constants.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatText, "text", "":
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, name)
	}
}

// Export renders a report in the named format.
func Export(report Report, format string) ([]byte, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return ExportToCSV(report)
	case FormatMarkdown:
		return ExportToMarkdown(report)
	case FormatJSON:
		return ExportToJSON(report)
	case FormatYAML:
		return ExportToYAML(report)
	default:
		return ExportToText(report)
	}
}

// ExportToCSV converts results to CSV with columns: File, Location, Keywords, Content
func ExportToCSV(report Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"File", "Location", "Keywords", "Content"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range report.Results {
		record := []string{r.File, r.Location, strings.Join(r.Keywords, ", "), r.Content}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a report to Markdown with a timing table and one section per result
func ExportToMarkdown(report Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Search Results: %s\n\n", report.Params.Keywords)
	if report.Folder != "" {
		fmt.Fprintf(&buf, "**Folder**: %s\n", report.Folder)
	}
	fmt.Fprintf(&buf, "**Exact Match**: %t\n", report.Params.ExactMatch)
	fmt.Fprintf(&buf, "**Workers**: %d\n\n", report.Params.NumWorkers)

	buf.WriteString("## Speedup Comparison\n\n")
	buf.WriteString("| Mode | Time (s) |\n|------|----------|\n")
	for _, p := range report.Chart {
		fmt.Fprintf(&buf, "| %s | %g |\n", p.Name, p.Time)
	}
	fmt.Fprintf(&buf, "\n**Speedup**: %s\n\n", speedupLabel(report.Speedup))

	fmt.Fprintf(&buf, "## Matches (%d)\n\n", len(report.Results))
	for i, r := range report.Results {
		fmt.Fprintf(&buf, "%d. **%s** (%s): %s\n", i+1, r.File, r.Location, strings.Join(r.Keywords, ", "))
		fmt.Fprintf(&buf, "   > %s\n", r.Content)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a report to plain text, as printed by the search command
func ExportToText(report Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("Speedup Comparison\n")
	buf.WriteString(RenderChart(report.Chart, 40))
	fmt.Fprintf(&buf, "Speedup: %s\n", speedupLabel(report.Speedup))
	fmt.Fprintf(&buf, "Sequential Time: %gs\n", report.Timing.Sequential)
	fmt.Fprintf(&buf, "Parallel Time: %gs\n\n", report.Timing.Parallel)

	if len(report.Results) == 0 {
		buf.WriteString("No matches found.\n")
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "Search Results (%d)\n", len(report.Results))
	for _, r := range report.Results {
		fmt.Fprintf(&buf, "\nFile: %s\n", r.File)
		fmt.Fprintf(&buf, "Location: %s\n", r.Location)
		fmt.Fprintf(&buf, "Matched: %s\n", strings.Join(r.Keywords, ", "))
		fmt.Fprintf(&buf, "  %s\n", r.Content)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a report to indented JSON
func ExportToJSON(report Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToYAML converts a report to YAML
func ExportToYAML(report Report) ([]byte, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}

// WriteExport renders report in format and writes it to path.
func WriteExport(report Report, format, path string) error {
	data, err := Export(report, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func speedupLabel(s string) string {
	if s == SpeedupUnavailable {
		return s
	}
	return s + "x faster"
}
