package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytq/internal/shared"
	"github.com/desertthunder/ytq/internal/tasks"
	"github.com/desertthunder/ytq/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing playlists and watching videos.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/ytq-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	var syncer *tasks.Synchronizer
	if provider, err := r.Provider(ctx); err == nil {
		syncer = tasks.NewSynchronizer(provider, store, r.logger)
	} else {
		r.logger.Warn("syncing disabled", "error", err)
	}

	model := ui.NewModel(ctx, ui.Options{
		Store:       store,
		Selector:    tasks.NewSelector(store, r.transcripts),
		Syncer:      syncer,
		OpenBrowser: r.openBrowser,
	})
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
