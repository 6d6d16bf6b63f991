package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/elioaoun07/homeagenda/internal/constants"
	"github.com/elioaoun07/homeagenda/internal/executor"
	"github.com/elioaoun07/homeagenda/internal/ledger"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/notifier"
	"github.com/elioaoun07/homeagenda/internal/occurrence"
	"github.com/elioaoun07/homeagenda/internal/recurrence"
	"github.com/elioaoun07/homeagenda/internal/storage"
	"github.com/elioaoun07/homeagenda/internal/utils"
)

type Context struct {
	Store      storage.Provider
	Dispatcher notifier.Dispatcher
	Resolver   *occurrence.Resolver
	// Actor is the acting user id recorded on ledger entries.
	Actor string
	// Now defaults to time.Now.
	Now func() time.Time
	// Confirm asks a yes/no question. Defaults to a huh prompt.
	Confirm func(title string) (bool, error)
}

func (c *Context) Clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Location returns the zone configured in settings alongside the settings themselves.
func (c *Context) Location(ctx context.Context) (*time.Location, models.Settings, error) {
	settings, err := c.Store.GetSettings(ctx)
	if err != nil {
		return nil, models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, settings, fmt.Errorf("invalid timezone setting %q: %w", settings.Timezone, err)
	}
	return loc, settings, nil
}

// NewExecutor builds an executor honouring the persisted settings.
func (c *Context) NewExecutor(ctx context.Context) (*executor.Executor, *time.Location, error) {
	loc, settings, err := c.Location(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts := []executor.Option{
		executor.WithLocation(loc),
		executor.WithStrictWrites(settings.StrictWrites),
		executor.WithResolver(c.Rules()),
	}
	if c.Now != nil {
		opts = append(opts, executor.WithClock(c.Now))
	}
	if settings.NotificationsEnabled && c.Dispatcher != nil {
		opts = append(opts, executor.WithDispatcher(c.Dispatcher))
	}
	return executor.New(c.Store, c.Store, opts...), loc, nil
}

// Rules returns the shared occurrence resolver, creating it on first use.
func (c *Context) Rules() *occurrence.Resolver {
	if c.Resolver == nil {
		c.Resolver = occurrence.NewResolver(recurrence.NewCache(constants.RecurrenceCacheSize))
	}
	return c.Resolver
}

// Ask runs the confirmation prompt unless skip is set.
func (c *Context) Ask(title string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}
	if c.Confirm != nil {
		return c.Confirm(title)
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirmation aborted: %w", err)
	}
	return ok, nil
}

// ResolveOccurrence turns the --at flag into an occurrence instant of item.
//
// An empty value means the item's own anchor for non-recurring items. For recurring
// ones it is the occurrence the agenda shows in front of now, so a postponement is
// followed to its target. A date without a time picks the first effective occurrence
// on that calendar day, or the rule instant of that day when it was postponed away.
func (c *Context) ResolveOccurrence(ctx context.Context, item models.Item, value string, loc *time.Location) (time.Time, error) {
	if !item.IsRecurring() {
		if value == "" {
			return time.Time{}, nil
		}
		t, _, err := utils.ParseInstant(value, loc)
		return t, err
	}

	actions, err := c.Store.ListActionsForItem(ctx, item.ID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load occurrence history: %w", err)
	}
	seq, err := c.Rules().In(loc).Sequence(item, ledger.NewIndex(actions))
	if err != nil {
		return time.Time{}, err
	}
	if value == "" {
		if t, ok := seq.Front(c.Clock()); ok {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("rule %q has no occurrences", seq.Rule().Text())
	}

	t, hasTime, err := utils.ParseInstant(value, loc)
	if err != nil {
		return time.Time{}, err
	}
	if hasTime {
		return t, nil
	}
	if next, ok := seq.Next(t, true); ok && utils.SameDay(next, t, loc) {
		return next, nil
	}
	if raw, ok := seq.Rule().Next(t, true); ok && utils.SameDay(raw, t, loc) {
		return raw, nil
	}
	return time.Time{}, fmt.Errorf("%w: no occurrence on %s", executor.ErrNotAnOccurrence, t.Format(constants.DateFormat))
}

// ParseObserved parses the optional --observed flag.
func ParseObserved(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --observed value %q (expected RFC3339): %w", value, err)
	}
	return &t, nil
}

// FormatInstant renders an optional instant in loc.
func FormatInstant(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format(constants.DateTimeFormat)
}

// PrintResult reports an executor outcome in the usual one-line style.
func PrintResult(verb string, res executor.Result, loc *time.Location) {
	at := ""
	if !res.OccurrenceAt.IsZero() {
		at = " at " + res.OccurrenceAt.In(loc).Format(constants.DateTimeFormat)
	}
	if res.Deduplicated {
		fmt.Printf("✓ %s%s was already %s\n", res.Item.Title, at, verb)
	} else {
		fmt.Printf("✓ %s %s%s\n", capitalize(verb), res.Item.Title, at)
	}
	if res.Action != nil && res.Action.PostponedTo != nil {
		fmt.Printf("  Moved to: %s\n", res.Action.PostponedTo.In(loc).Format(constants.DateTimeFormat))
	}
	if res.Notified {
		fmt.Printf("  Notified %s\n", res.Item.ResponsibleUserID)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Warnf prints a non-fatal warning to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "⚠️  "+format+"\n", args...)
}
