package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/elioaoun07/homeagenda/internal/agenda"
	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/tui"
)

type AgendaCmd struct {
	Responsible string `short:"u" help:"Only show items assigned to this user."`
}

func (c *AgendaCmd) Run(ctx *cli.Context) error {
	a, loc, err := c.build(ctx)
	if err != nil {
		return err
	}
	fmt.Print(tui.RenderAgenda(a, loc, -1))
	for _, f := range a.Faults {
		cli.Warnf("item %s: %v", f.ItemID, f.Err)
	}
	return nil
}

func (c *AgendaCmd) build(ctx *cli.Context) (agenda.Agenda, *time.Location, error) {
	bg := context.Background()
	loc, _, err := ctx.Location(bg)
	if err != nil {
		return agenda.Agenda{}, nil, err
	}

	items, err := ctx.Store.ListItems(bg, models.ItemFilter{ResponsibleUserID: c.Responsible})
	if err != nil {
		return agenda.Agenda{}, nil, fmt.Errorf("failed to list items: %w", err)
	}
	actions, err := ctx.Store.ListAllActions(bg)
	if err != nil {
		return agenda.Agenda{}, nil, fmt.Errorf("failed to list occurrence actions: %w", err)
	}

	return agenda.Build(items, actions, ctx.Clock(), agenda.Options{
		Location: loc,
		Resolver: ctx.Rules(),
	}), loc, nil
}
