package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/kwscan/internal/shared"
	"github.com/desertthunder/kwscan/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for keyword searches.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	orchestrator, closeDB, err := r.newOrchestrator(cmd.Bool("save"))
	if err != nil {
		return err
	}
	defer closeDB()

	model := ui.NewModel(ctx, ui.ModelOpts{
		Orchestrator: orchestrator,
		Collect:      r.collect,
		Logger:       r.logger,
		Keywords:     cmd.String("keywords"),
		Folder:       cmd.String("dir"),
		ExactMatch:   r.config.Search.ExactMatch,
		Workers:      r.defaultWorkers(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
