package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/kwscan/internal/formatter"
	"github.com/desertthunder/kwscan/internal/shared"
	"github.com/desertthunder/kwscan/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Search collects the files of a folder, submits them and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	if dir == "" {
		return fmt.Errorf("%w: --dir is required", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	}
	outputPath := cmd.String("output")
	plain := format == formatter.FormatText && outputPath == ""

	files, err := r.collect(dir)
	if err != nil {
		return fmt.Errorf("failed to read folder: %w", err)
	}

	raw := tasks.RawParameters{
		Keywords:   cmd.String("keywords"),
		ExactMatch: cmd.Bool("exact") || (!cmd.IsSet("exact") && r.config.Search.ExactMatch),
		Workers:    cmd.String("workers"),
	}
	if !cmd.IsSet("workers") {
		raw.Workers = strconv.Itoa(r.defaultWorkers())
	}

	orchestrator, closeDB, err := r.newOrchestrator(cmd.Bool("save"))
	if err != nil {
		return err
	}
	defer closeDB()

	orchestrator.SelectFiles(files)
	r.logger.Info("starting search", "dir", files.Root, "files", files.Len(), "bytes", files.TotalSize())
	if plain {
		r.writePlain("Searching %d files in %s...\n", files.Len(), files.Root)
	}

	updates := make(chan tasks.ProgressUpdate, 64)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		r.printProgress(updates, plain)
	}()

	resp, err := orchestrator.Submit(ctx, raw, updates)
	close(updates)
	<-printed

	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	report := formatter.NewReport(files.Root, orchestrator.State().Params, resp)

	if outputPath != "" {
		if err := formatter.WriteExport(report, format, outputPath); err != nil {
			return err
		}
		r.logger.Info("results exported", "path", outputPath, "format", format)
		r.writePlain("✓ %d results saved to %s\n", len(resp.Results), outputPath)
		return nil
	}

	data, err := formatter.Export(report, format)
	if err != nil {
		return err
	}
	if plain {
		r.writePlain("\n")
		r.writePlainHeader("Search Complete")
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// printProgress writes upload progress in 10% steps; other formats only log it.
func (r *Runner) printProgress(updates <-chan tasks.ProgressUpdate, plain bool) {
	last := -1
	for update := range updates {
		r.logger.Debug("search progress", "phase", update.Phase, "state", update.State)
		if !plain {
			continue
		}

		switch update.Phase {
		case tasks.Upload:
			if step := update.Step / 10; step > last {
				last = step
				r.writePlain("⬆ %s\n", update.Message)
			}
		case tasks.Await:
			r.writePlain("⏳ %s\n", update.Message)
		}
	}
}

// Cores prints the maximum worker count of this machine.
func (r *Runner) Cores(ctx context.Context, cmd *cli.Command) error {
	return r.writePlain("Max available on your device: %d\n", r.maxCores)
}
