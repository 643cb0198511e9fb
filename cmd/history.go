package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/kwscan/internal/formatter"
	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/repositories"
	"github.com/desertthunder/kwscan/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyEntry is the JSON shape of a listed search.
type historyEntry struct {
	ID         string                  `json:"id"`
	CreatedAt  string                  `json:"created_at"`
	Root       string                  `json:"root"`
	Parameters models.SearchParameters `json:"parameters"`
	Files      int                     `json:"files"`
	Status     models.RunStatus        `json:"status"`
	Error      string                  `json:"error,omitempty"`
	Matches    int                     `json:"matches"`
	Speedup    string                  `json:"speedup"`
}

func newHistoryEntry(run *models.SearchRun) historyEntry {
	speedup := formatter.SpeedupUnavailable
	if run.Timing != nil {
		speedup = formatter.FormatSpeedup(*run.Timing)
	}
	return historyEntry{
		ID:         run.ID,
		CreatedAt:  run.CreatedAt.Format("2006-01-02 15:04:05"),
		Root:       run.Root,
		Parameters: run.Parameters,
		Files:      run.FileCount,
		Status:     run.Status,
		Error:      run.Error,
		Matches:    run.ResultCount(),
		Speedup:    speedup,
	}
}

// HistoryList prints the most recent recorded searches.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewSearchRepository(db).List(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list searches: %w", err)
	}

	entries := make([]historyEntry, len(runs))
	for i, run := range runs {
		entries[i] = newHistoryEntry(run)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("No searches recorded yet.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Recent Searches (%d)", len(entries)))
	for _, e := range entries {
		status := "✓"
		if e.Status == models.RunFailed {
			status = "✗"
		}
		r.writePlain("%s %s  %s\n", status, e.ID, e.CreatedAt)
		r.writePlain("   Folder: %s (%d files)\n", e.Root, e.Files)
		r.writePlain("   Keywords: %q  Exact: %t  Workers: %d\n", e.Parameters.Keywords, e.Parameters.ExactMatch, e.Parameters.NumWorkers)
		if e.Status == models.RunFailed {
			r.writePlain("   Error: %s\n", e.Error)
		} else {
			r.writePlain("   Matches: %d  Speedup: %s\n", e.Matches, e.Speedup)
		}
	}

	return nil
}

// HistoryShow prints a recorded search in the requested format.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: search id", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := repositories.NewSearchRepository(db).Get(ctx, id)
	if err != nil {
		return err
	}

	if run.Status == models.RunFailed || run.Timing == nil {
		return r.writePlain("✗ Search %s failed: %s\n", run.ID, run.Error)
	}

	report := formatter.NewReport(run.Root, run.Parameters, &models.SearchResponse{
		Results: run.Results,
		Timing:  *run.Timing,
	})

	data, err := formatter.Export(report, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// HistoryDelete removes a recorded search.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: search id", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewSearchRepository(db).Delete(ctx, id); err != nil {
		return err
	}

	r.logger.Info("search deleted", "id", id)
	return r.writePlain("✓ Deleted search %s\n", id)
}
