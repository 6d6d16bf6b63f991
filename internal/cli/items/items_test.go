package items

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/ledger"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/recurrence"
	"github.com/elioaoun07/homeagenda/internal/storage"
)

var clock = time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

func newContext(t *testing.T) (*cli.Context, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(context.Background(), settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	return &cli.Context{
		Store: store,
		Actor: "alice",
		Now:   func() time.Time { return clock },
	}, store
}

func onlyItem(t *testing.T, store *storage.MemoryStore) models.Item {
	t.Helper()
	items, err := store.ListItems(context.Background(), models.ItemFilter{IncludeArchived: true})
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	return items[0]
}

func TestItemAddRecurring(t *testing.T) {
	ctx, store := newContext(t)
	cmd := &ItemAddCmd{
		Title:       "Take out trash",
		Type:        "reminder",
		Due:         "2024-01-01 08:00",
		Rule:        "FREQ=WEEKLY;BYDAY=MO",
		Responsible: "bob",
	}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	item := onlyItem(t, store)
	want := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	if item.DueAt == nil || !item.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", item.DueAt, want)
	}
	if !item.IsRecurring() || !item.Recurrence.Anchor.Equal(want) {
		t.Errorf("Recurrence = %+v, want anchor %v", item.Recurrence, want)
	}
	if item.Recurrence.Zone != "UTC" {
		t.Errorf("Recurrence.Zone = %q, want the household zone", item.Recurrence.Zone)
	}
	if item.CreatedBy != "alice" || item.ResponsibleUserID != "bob" {
		t.Errorf("CreatedBy/Responsible = %q/%q", item.CreatedBy, item.ResponsibleUserID)
	}
	if item.Visibility != models.VisibilityPublic {
		t.Errorf("Visibility = %q", item.Visibility)
	}
}

func TestItemAddEvent(t *testing.T) {
	ctx, store := newContext(t)
	cmd := &ItemAddCmd{Title: "Dinner", Type: "event", Start: "2024-01-09 19:00", End: "2024-01-09 21:00", Private: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	item := onlyItem(t, store)
	if item.StartAt == nil || item.EndAt == nil || item.EndAt.Sub(*item.StartAt) != 2*time.Hour {
		t.Errorf("event times = %v..%v", item.StartAt, item.EndAt)
	}
	if item.Visibility != models.VisibilityPrivate {
		t.Errorf("Visibility = %q, want private", item.Visibility)
	}
}

func TestItemAddValidation(t *testing.T) {
	tests := []struct {
		name string
		cmd  ItemAddCmd
	}{
		{"event with due", ItemAddCmd{Title: "x", Type: "event", Due: "2024-01-01"}},
		{"task with start", ItemAddCmd{Title: "x", Type: "task", Start: "2024-01-01"}},
		{"rule without anchor", ItemAddCmd{Title: "x", Type: "task", Rule: "FREQ=DAILY"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestItemAddRejectsBadRule(t *testing.T) {
	ctx, store := newContext(t)
	cmd := &ItemAddCmd{Title: "x", Type: "task", Due: "2024-01-01", Rule: "FREQ=FORTNIGHTLY"}
	err := cmd.Run(ctx)
	if !recurrence.IsInvalidRule(err) {
		t.Fatalf("Run() error = %v, want an invalid rule error", err)
	}
	items, _ := store.ListItems(context.Background(), models.ItemFilter{})
	if len(items) != 0 {
		t.Errorf("expected nothing stored, got %d items", len(items))
	}
}

func TestItemListAndShow(t *testing.T) {
	ctx, store := newContext(t)
	if err := (&ItemAddCmd{Title: "Water plants", Type: "task", Due: "2024-01-01 18:00", Rule: "FREQ=DAILY"}).Run(ctx); err != nil {
		t.Fatalf("ItemAddCmd.Run() error = %v", err)
	}
	item := onlyItem(t, store)

	if err := (&ItemListCmd{}).Run(ctx); err != nil {
		t.Errorf("ItemListCmd.Run() error = %v", err)
	}
	if err := (&ItemListCmd{Type: "bogus"}).Validate(); err == nil {
		t.Error("expected --type bogus to be rejected")
	}
	if err := (&ItemShowCmd{ID: item.ID, Count: 3}).Run(ctx); err != nil {
		t.Errorf("ItemShowCmd.Run() error = %v", err)
	}
	if err := (&ItemShowCmd{ID: item.ID, History: true}).Run(ctx); err != nil {
		t.Errorf("ItemShowCmd.Run(--history) error = %v", err)
	}
	if err := (&ItemShowCmd{ID: "missing"}).Run(ctx); !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("ItemShowCmd.Run(missing) error = %v, want ErrItemNotFound", err)
	}
}

func TestActionLinesShowCurrentEntries(t *testing.T) {
	jan8 := time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC)
	jan9 := jan8.AddDate(0, 0, 1)
	ix := ledger.NewIndex([]models.OccurrenceAction{
		{ItemID: "plants", OccurrenceAt: jan8, Kind: models.ActionCompleted, CreatedAt: clock},
		{ItemID: "plants", OccurrenceAt: jan8, Kind: models.ActionReopened, CreatedAt: clock.Add(time.Minute), ActorID: "bob"},
		{ItemID: "plants", OccurrenceAt: jan9, Kind: models.ActionPostponed, PostponeKind: models.PostponeCustom,
			PostponedTo: &jan8, CreatedAt: clock.Add(2 * time.Minute), Reason: "away"},
	})

	lines := actionLines(ix.ForItem("plants"), time.UTC)
	if len(lines) != 2 {
		t.Fatalf("actionLines() = %q, want one line per occurrence", lines)
	}
	if !strings.Contains(lines[0], string(models.ActionReopened)) || !strings.HasSuffix(lines[0], "by bob") {
		t.Errorf("lines[0] = %q, want the reopen by bob", lines[0])
	}
	if !strings.Contains(lines[1], "-> 2024-01-08 18:00") || !strings.HasSuffix(lines[1], "(away)") {
		t.Errorf("lines[1] = %q, want the postponement target and reason", lines[1])
	}
}

func TestItemDelete(t *testing.T) {
	ctx, store := newContext(t)
	if err := (&ItemAddCmd{Title: "Water plants", Type: "task", Due: "2024-01-01 18:00", Rule: "FREQ=DAILY"}).Run(ctx); err != nil {
		t.Fatalf("ItemAddCmd.Run() error = %v", err)
	}
	item := onlyItem(t, store)
	bg := context.Background()
	if _, err := store.AppendAction(bg, models.OccurrenceAction{
		ID:           "a1",
		ItemID:       item.ID,
		OccurrenceAt: *item.DueAt,
		Kind:         models.ActionCompleted,
		CreatedAt:    clock,
	}); err != nil {
		t.Fatalf("AppendAction() error = %v", err)
	}

	t.Run("declined", func(t *testing.T) {
		ctx.Confirm = func(string) (bool, error) { return false, nil }
		defer func() { ctx.Confirm = nil }()
		if err := (&ItemDeleteCmd{ID: item.ID}).Run(ctx); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if _, err := store.GetItem(bg, item.ID); err != nil {
			t.Errorf("item should survive a declined prompt: %v", err)
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		if err := (&ItemDeleteCmd{ID: item.ID, Yes: true}).Run(ctx); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if _, err := store.GetItem(bg, item.ID); !errors.Is(err, models.ErrItemNotFound) {
			t.Errorf("GetItem() after delete error = %v", err)
		}
		actions, _ := store.ListActionsForItem(bg, item.ID)
		if len(actions) != 0 {
			t.Errorf("expected the ledger to be cleared, got %d entries", len(actions))
		}
	})

	t.Run("retry cascade on a deleted item", func(t *testing.T) {
		if err := (&ItemDeleteCmd{ID: item.ID, RetryCascade: true}).Run(ctx); err != nil {
			t.Errorf("Run(--retry-cascade) error = %v", err)
		}
	})
}
