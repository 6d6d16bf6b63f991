package occurrences

import (
	"context"
	"fmt"

	"github.com/elioaoun07/homeagenda/internal/cli"
)

type CompleteCmd struct {
	OccurrenceFlags `embed:""`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	p, err := c.prepare(ctx)
	if err != nil {
		return err
	}
	res, err := p.exec.Complete(context.Background(), p.req)
	if err != nil {
		return err
	}
	cli.PrintResult("completed", res, p.loc)
	return nil
}

type CancelCmd struct {
	OccurrenceFlags `embed:""`
	Yes             bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *CancelCmd) Run(ctx *cli.Context) error {
	p, err := c.prepare(ctx)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Cancel %q?", p.item.Title)
	if !p.req.OccurrenceAt.IsZero() && p.item.IsRecurring() {
		title = fmt.Sprintf("Cancel %q on %s?", p.item.Title, cli.FormatInstant(&p.req.OccurrenceAt, p.loc))
	}
	ok, err := ctx.Ask(title, c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}

	res, err := p.exec.Cancel(context.Background(), p.req)
	if err != nil {
		return err
	}
	cli.PrintResult("cancelled", res, p.loc)
	return nil
}

// ReopenCmd undoes an earlier complete, cancel or postpone.
type ReopenCmd struct {
	OccurrenceFlags `embed:""`
}

func (c *ReopenCmd) Run(ctx *cli.Context) error {
	p, err := c.prepare(ctx)
	if err != nil {
		return err
	}
	res, err := p.exec.Reopen(context.Background(), p.req)
	if err != nil {
		return err
	}
	cli.PrintResult("reopened", res, p.loc)
	return nil
}
