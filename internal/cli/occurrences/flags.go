// Package occurrences holds the commands that act on one occurrence of an item.
package occurrences

import (
	"context"
	"fmt"
	"time"

	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/executor"
	"github.com/elioaoun07/homeagenda/internal/models"
)

type OccurrenceFlags struct {
	ID         string `arg:"" help:"Item ID."`
	At         string `help:"Occurrence to act on (YYYY-MM-DD or 'YYYY-MM-DD HH:MM'). Defaults to the occurrence in front of now."`
	Reason     string `help:"Optional note stored with the action."`
	ReassignTo string `help:"Hand the item to another responsible user."`
	Observed   string `help:"Creation time (RFC3339) of the latest action you saw; enables stale write detection."`
}

// prepared bundles what every occurrence command needs before calling the executor.
type prepared struct {
	exec *executor.Executor
	loc  *time.Location
	item models.Item
	req  executor.Request
}

func (f OccurrenceFlags) prepare(ctx *cli.Context) (prepared, error) {
	bg := context.Background()
	exec, loc, err := ctx.NewExecutor(bg)
	if err != nil {
		return prepared{}, err
	}

	item, err := ctx.Store.GetItem(bg, f.ID)
	if err != nil {
		return prepared{}, fmt.Errorf("failed to find item with ID %s: %w", f.ID, err)
	}

	at, err := ctx.ResolveOccurrence(bg, item, f.At, loc)
	if err != nil {
		return prepared{}, err
	}
	observed, err := cli.ParseObserved(f.Observed)
	if err != nil {
		return prepared{}, err
	}

	return prepared{
		exec: exec,
		loc:  loc,
		item: item,
		req: executor.Request{
			ItemID:       item.ID,
			OccurrenceAt: at,
			ActorID:      ctx.Actor,
			Reason:       f.Reason,
			ReassignTo:   f.ReassignTo,
			ObservedAt:   observed,
		},
	}, nil
}
