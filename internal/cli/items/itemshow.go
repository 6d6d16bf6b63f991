package items

import (
	"context"
	"fmt"
	"time"

	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/constants"
	"github.com/elioaoun07/homeagenda/internal/ledger"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/occurrence"
)

// ItemShowCmd prints one item, its upcoming occurrences and its ledger history.
type ItemShowCmd struct {
	ID    string `arg:"" help:"Item ID."`
	Count   int  `short:"n" help:"Number of upcoming occurrences to show for recurring items." default:"5"`
	History bool `help:"Print every ledger entry instead of the current entry per occurrence."`
}

func (c *ItemShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	loc, _, err := ctx.Location(bg)
	if err != nil {
		return err
	}

	item, err := ctx.Store.GetItem(bg, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find item with ID %s: %w", c.ID, err)
	}

	fmt.Printf("%s (%s)\n", item.Title, item.Type)
	fmt.Printf("  ID:          %s\n", item.ID)
	if item.Description != "" {
		fmt.Printf("  Description: %s\n", item.Description)
	}
	fmt.Printf("  When:        %s\n", cli.FormatInstant(item.Anchor(), loc))
	if item.EndAt != nil {
		fmt.Printf("  Ends:        %s\n", cli.FormatInstant(item.EndAt, loc))
	}
	fmt.Printf("  Status:      %s\n", item.Status)
	if item.ResponsibleUserID != "" {
		fmt.Printf("  Responsible: %s\n", item.ResponsibleUserID)
	}
	fmt.Printf("  Visibility:  %s\n", item.Visibility)

	if !item.IsRecurring() {
		return nil
	}
	fmt.Printf("  Repeats:     %s\n", item.Recurrence.Rule)

	actions, err := ctx.Store.ListActionsForItem(bg, item.ID)
	if err != nil {
		return fmt.Errorf("failed to list occurrence actions: %w", err)
	}
	ix := ledger.NewIndex(actions)

	seq, err := ctx.Rules().In(loc).Sequence(item, ix)
	if err != nil {
		fmt.Printf("  ⚠️  %v\n", err)
		return nil
	}

	fmt.Println("\nUpcoming:")
	at, ok := seq.Next(ctx.Clock(), true)
	for i := 0; ok && i < c.Count; i++ {
		fmt.Printf("  %s  %s\n", at.In(loc).Format(constants.DateTimeFormat), occurrence.Resolve(item, at, ix))
		at, ok = seq.Next(at, false)
	}

	entries, title := ix.ForItem(item.ID), "Recorded"
	if c.History {
		entries, title = actions, "History"
	}
	if len(entries) > 0 {
		fmt.Printf("\n%s:\n", title)
		for _, line := range actionLines(entries, loc) {
			fmt.Println(line)
		}
	}
	return nil
}

func actionLines(actions []models.OccurrenceAction, loc *time.Location) []string {
	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		line := fmt.Sprintf("  %s  %-9s %s", a.CreatedAt.In(loc).Format(constants.DateTimeFormat), a.Kind, a.OccurrenceAt.In(loc).Format(constants.DateTimeFormat))
		if a.PostponedTo != nil {
			line += " -> " + a.PostponedTo.In(loc).Format(constants.DateTimeFormat)
		} else if a.PostponeKind != "" {
			line += " -> " + string(a.PostponeKind)
		}
		if a.ActorID != "" {
			line += " by " + a.ActorID
		}
		if a.Reason != "" {
			line += fmt.Sprintf(" (%s)", a.Reason)
		}
		lines = append(lines, line)
	}
	return lines
}
