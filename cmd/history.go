package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/shopx/internal/formatter"
	"github.com/desertthunder/shopx/internal/shared"
	"github.com/urfave/cli/v3"
)

type historyEntry struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entityId"`
	Operation string    `json:"operation"`
	Fields    []string  `json:"fields"`
	Multipart bool      `json:"multipart"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// History lists recorded writes, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.history == nil {
		return fmt.Errorf("%w: database not initialized", shared.ErrServiceUnavailable)
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	switch entity := cmd.String("entity"); entity {
	case "":
	case "video", "category":
		criteria["entity"] = entity
	default:
		return fmt.Errorf("%w: --entity must be video or category, got %q", shared.ErrInvalidFlag, entity)
	}
	if cmd.IsSet("id") {
		criteria["entity_id"] = int64(cmd.Int("id"))
	}

	subs, err := r.history.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, 0, len(subs))
		for _, s := range subs {
			entries = append(entries, historyEntry{
				ID:        s.ID(),
				Entity:    s.Entity(),
				EntityID:  s.EntityID(),
				Operation: string(s.Operation()),
				Fields:    s.Fields(),
				Multipart: s.Multipart(),
				Error:     s.Err(),
				CreatedAt: s.CreatedAt(),
			})
		}
		return r.writeJSON(entries, true)
	}

	if len(subs) == 0 {
		r.writePlain("No writes recorded\n")
		return nil
	}

	r.writePlain("%s\n", formatter.SubmissionTable(subs))
	return nil
}
