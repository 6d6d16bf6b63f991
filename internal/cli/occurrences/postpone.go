package occurrences

import (
	"context"
	"fmt"

	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/executor"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/utils"
)

type PostponeCmd struct {
	OccurrenceFlags `embed:""`
	Kind            string `short:"k" help:"How to postpone (next_occurrence|tomorrow|custom)." default:"tomorrow"`
	To              string `help:"Target for custom postponements. A date alone keeps the occurrence's time of day."`
}

func (c *PostponeCmd) Validate() error {
	if c.To != "" && models.PostponeKind(c.Kind) != models.PostponeCustom {
		return fmt.Errorf("--to only applies to --kind custom")
	}
	return nil
}

func (c *PostponeCmd) Run(ctx *cli.Context) error {
	p, err := c.prepare(ctx)
	if err != nil {
		return err
	}

	req := executor.PostponeRequest{Request: p.req, Kind: models.PostponeKind(c.Kind)}
	if c.To != "" {
		target, hasTime, err := utils.ParseInstant(c.To, p.loc)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		req.Target = target
		req.TargetHasTime = hasTime
	}

	res, err := p.exec.Postpone(context.Background(), req)
	if err != nil {
		return err
	}
	cli.PrintResult("postponed", res, p.loc)
	return nil
}
