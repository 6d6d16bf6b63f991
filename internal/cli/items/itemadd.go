package items

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/recurrence"
	"github.com/elioaoun07/homeagenda/internal/utils"
)

type ItemAddCmd struct {
	Title       string `arg:"" help:"Item title."`
	Type        string `short:"t" help:"Item type (reminder|event|task)." enum:"reminder,event,task" default:"task"`
	Description string `short:"D" help:"Free-form description."`
	Due         string `short:"d" help:"Due date/time for reminders and tasks (YYYY-MM-DD or 'YYYY-MM-DD HH:MM')."`
	Start       string `short:"s" help:"Start date/time for events."`
	End         string `short:"e" help:"End date/time for events."`
	Rule        string `short:"r" help:"RFC 5545 recurrence rule, e.g. FREQ=WEEKLY;BYDAY=MO. Anchored at the due or start time."`
	Responsible string `short:"u" help:"Responsible user id."`
	Private     bool   `help:"Hide the item from other household members."`
}

func (c *ItemAddCmd) Validate() error {
	switch models.ItemType(c.Type) {
	case models.ItemTypeEvent:
		if c.Due != "" {
			return fmt.Errorf("events use --start/--end, not --due")
		}
	default:
		if c.Start != "" || c.End != "" {
			return fmt.Errorf("%s items use --due, not --start/--end", c.Type)
		}
	}
	if strings.TrimSpace(c.Rule) != "" && c.Due == "" && c.Start == "" {
		return fmt.Errorf("a recurrence rule needs --due or --start as its anchor")
	}
	return nil
}

func (c *ItemAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	loc, _, err := ctx.Location(bg)
	if err != nil {
		return err
	}

	item := models.Item{
		ID:                uuid.New().String(),
		Type:              models.ItemType(c.Type),
		Title:             c.Title,
		Description:       c.Description,
		Status:            models.ItemStatusPending,
		ResponsibleUserID: c.Responsible,
		CreatedBy:         ctx.Actor,
		Visibility:        models.VisibilityPublic,
	}
	if c.Private {
		item.Visibility = models.VisibilityPrivate
	}

	if item.DueAt, err = parseOptional("--due", c.Due, loc); err != nil {
		return err
	}
	if item.StartAt, err = parseOptional("--start", c.Start, loc); err != nil {
		return err
	}
	if item.EndAt, err = parseOptional("--end", c.End, loc); err != nil {
		return err
	}

	if rule := strings.TrimSpace(c.Rule); rule != "" {
		anchor := *item.Anchor()
		// Reject bad rules up front rather than as agenda faults later.
		if _, err := recurrence.Parse(rule, anchor); err != nil {
			return err
		}
		item.Recurrence = &models.Recurrence{Rule: rule, Anchor: anchor}
		if loc != time.Local {
			item.Recurrence.Zone = loc.String()
		}
	}

	if err := ctx.Store.AddItem(bg, item); err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}

	fmt.Printf("✓ Added %s: %s (ID: %s)\n", item.Type, item.Title, item.ID)
	return nil
}

func parseOptional(flag, value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, _, err := utils.ParseInstant(value, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", flag, err)
	}
	t = t.UTC()
	return &t, nil
}
