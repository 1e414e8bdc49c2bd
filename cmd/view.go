package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/shared"
	"github.com/urfave/cli/v3"
)

// ViewGet prints the saved list view mode.
func (r *Runner) ViewGet(ctx context.Context, cmd *cli.Command) error {
	if r.views == nil {
		return fmt.Errorf("%w: database not initialized", shared.ErrServiceUnavailable)
	}

	mode, err := r.views.Get()
	if err != nil {
		return err
	}
	r.writePlain("%s\n", mode)
	return nil
}

// ViewSet saves the list view mode used by videos list and the TUI.
func (r *Runner) ViewSet(ctx context.Context, cmd *cli.Command) error {
	if r.views == nil {
		return fmt.Errorf("%w: database not initialized", shared.ErrServiceUnavailable)
	}

	raw := cmd.StringArg("mode")
	if raw == "" {
		return fmt.Errorf("%w: mode (cards or table)", shared.ErrMissingArgument)
	}
	mode, ok := models.ParseViewMode(raw)
	if !ok {
		return fmt.Errorf("%w: mode must be cards or table, got %q", shared.ErrInvalidArgument, raw)
	}

	if err := r.views.Set(mode); err != nil {
		return err
	}
	r.writePlain("✓ View set to %s\n", mode)
	return nil
}
