package settings

import (
	"context"
	"fmt"

	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/utils"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	fmt.Println("Current Settings:")
	fmt.Printf("  Timezone:              %s\n", settings.Timezone)
	fmt.Printf("  Strict Writes:         %v\n", settings.StrictWrites)
	fmt.Println("\nNotification Settings:")
	fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
	return nil
}

type SettingsSetCmd struct {
	Timezone             *string `help:"IANA timezone used for today, tomorrow and the week boundary (or Local)."`
	NotificationsEnabled *bool   `help:"Enable or disable assignment notifications."`
	StrictWrites         *bool   `help:"Reject stale occurrence writes instead of logging them."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	settings, err := ctx.Store.GetSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.StrictWrites != nil {
		settings.StrictWrites = *c.StrictWrites
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use 'settings show' to view settings or flags to update them.")
		return nil
	}
	if err := ctx.Store.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("✓ Settings updated successfully.")
	return nil
}
