package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/executor"
)

type ItemDeleteCmd struct {
	ID           string `arg:"" help:"Item ID to delete."`
	Yes          bool   `short:"y" help:"Skip the confirmation prompt."`
	RetryCascade bool   `help:"Only clear occurrence actions left behind by an earlier failed delete."`
}

func (c *ItemDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	exec, _, err := ctx.NewExecutor(bg)
	if err != nil {
		return err
	}

	if c.RetryCascade {
		if err := exec.RetryCascade(bg, c.ID); err != nil {
			return err
		}
		fmt.Printf("✓ Cleared occurrence actions of deleted item %s\n", c.ID)
		return nil
	}

	item, err := ctx.Store.GetItem(bg, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find item with ID %s: %w", c.ID, err)
	}

	ok, err := ctx.Ask(fmt.Sprintf("Delete %q and its whole occurrence history?", item.Title), c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}

	if err := exec.Delete(bg, c.ID); err != nil {
		var cascade *executor.CascadeError
		if errors.As(err, &cascade) {
			cli.Warnf("%s was deleted but its occurrence history was not.", item.Title)
		}
		return err
	}

	fmt.Printf("✓ Deleted %s: %s (ID: %s)\n", item.Type, item.Title, c.ID)
	return nil
}
