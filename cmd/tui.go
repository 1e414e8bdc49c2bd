package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shopx/internal/shared"
	"github.com/desertthunder/shopx/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/shopx-tui.log"

// TUI launches the interactive admin UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil || r.views == nil {
		return fmt.Errorf("%w: database not initialized, run 'shopx setup database'", shared.ErrServiceUnavailable)
	}
	if r.engine == nil {
		return fmt.Errorf("%w: catalog engine not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.Deps{
		Engine:   r.engine,
		Auth:     r.auth,
		Sessions: r.sessions,
		Views:    r.views,
		Notices:  r.notices,
		Logger:   fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
