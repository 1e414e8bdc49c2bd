package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/shopx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin checks the credentials and stores the resulting session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: database not initialized, run 'shopx setup database'", shared.ErrServiceUnavailable)
	}

	username := cmd.String("username")
	password := cmd.String("password")

	sess, err := r.auth.Authenticate(ctx, username, password)
	if err != nil {
		r.logger.Warn("login rejected", "username", username)
		return err
	}

	if err := r.sessions.Set(*sess); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	r.logger.Info("signed in", "username", sess.Username)
	r.writePlain("✓ Signed in as %s\n", sess.Username)
	return nil
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: database not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	r.writePlain("✓ Signed out\n")
	return nil
}

// AuthStatus prints the stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.requireSession()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(sess, true)
	}

	r.writePlain("Signed in as %s since %s\n", sess.Username, sess.LoginAt.Local().Format(time.DateTime))
	return nil
}
