package items

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/models"
)

type ItemListCmd struct {
	All         bool   `short:"a" help:"Include archived items."`
	Type        string `short:"t" help:"Only list items of this type (reminder|event|task)."`
	Responsible string `short:"u" help:"Only list items assigned to this user."`
}

func (c *ItemListCmd) Validate() error {
	switch models.ItemType(c.Type) {
	case "", models.ItemTypeReminder, models.ItemTypeEvent, models.ItemTypeTask:
		return nil
	}
	return fmt.Errorf("invalid --type %q", c.Type)
}

func (c *ItemListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	loc, _, err := ctx.Location(bg)
	if err != nil {
		return err
	}

	items, err := ctx.Store.ListItems(bg, models.ItemFilter{
		IncludeArchived:   c.All,
		Type:              models.ItemType(c.Type),
		ResponsibleUserID: c.Responsible,
	})
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	if len(items) == 0 {
		fmt.Println("No items found. Use 'homeagenda item add' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTITLE\tWHEN\tREPEATS\tSTATUS\tRESPONSIBLE")
	for _, item := range items {
		repeats := "-"
		if item.IsRecurring() {
			repeats = item.Recurrence.Rule
		}
		responsible := item.ResponsibleUserID
		if responsible == "" {
			responsible = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Type, item.Title, cli.FormatInstant(item.Anchor(), loc), repeats, item.Status, responsible)
	}
	return w.Flush()
}
