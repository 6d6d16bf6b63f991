package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/occurrence"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func weeklyItem() models.Item {
	anchor := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	return models.Item{
		ID:                "trash",
		Type:              models.ItemTypeReminder,
		Title:             "Take out trash",
		DueAt:             &anchor,
		Recurrence:        &models.Recurrence{Rule: "FREQ=WEEKLY;BYDAY=MO", Anchor: anchor},
		Status:            models.ItemStatusPending,
		ResponsibleUserID: "alice",
		Visibility:        models.VisibilityPublic,
	}
}

func TestInitAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "homeagenda.db")

	if err := NewStore(path).Load(); err == nil {
		t.Error("Load before Init should fail")
	}

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load after Init failed: %v", err)
	}
	defer reopened.Close()

	settings, err := reopened.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", settings)
	}
	if reopened.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q", reopened.GetConfigPath())
	}
}

func TestItemRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	item := weeklyItem()

	if err := store.AddItem(ctx, item); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	got, err := store.GetItem(ctx, "trash")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Title != item.Title || got.Type != item.Type || !got.DueAt.Equal(*item.DueAt) {
		t.Errorf("GetItem = %+v", got)
	}
	if got.Recurrence == nil || got.Recurrence.Rule != item.Recurrence.Rule || !got.Recurrence.Anchor.Equal(item.Recurrence.Anchor) {
		t.Errorf("recurrence = %+v", got.Recurrence)
	}
	if got.StartAt != nil || got.EndAt != nil {
		t.Error("unset times should stay nil")
	}

	if _, err := store.GetItem(ctx, "missing"); !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("GetItem(missing) = %v, want ErrItemNotFound", err)
	}
}

func TestRecurrenceZoneRoundTrip(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	store := setupTestStore(t)
	ctx := context.Background()

	// Monday 08:00 in Tokyo is still Sunday in UTC.
	anchor := time.Date(2024, 1, 8, 8, 0, 0, 0, tokyo)
	zoned := weeklyItem()
	zoned.DueAt = &anchor
	zoned.Recurrence = &models.Recurrence{Rule: "FREQ=WEEKLY;BYDAY=MO;BYHOUR=8", Anchor: anchor, Zone: "Asia/Tokyo"}
	bare := weeklyItem()
	bare.ID = "bare"
	bare.DueAt = &anchor
	bare.Recurrence = &models.Recurrence{Rule: "FREQ=WEEKLY;BYDAY=MO;BYHOUR=8", Anchor: anchor}
	for _, item := range []models.Item{zoned, bare} {
		if err := store.AddItem(ctx, item); err != nil {
			t.Fatalf("AddItem(%s) failed: %v", item.ID, err)
		}
	}

	tests := []struct {
		id  string
		loc *time.Location
	}{
		{"trash", time.UTC}, // the stored zone wins
		{"bare", tokyo},     // the household zone applies
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := store.GetItem(ctx, tt.id)
			if err != nil {
				t.Fatalf("GetItem failed: %v", err)
			}
			if !got.Recurrence.Anchor.Equal(anchor) {
				t.Errorf("anchor = %v, want %v", got.Recurrence.Anchor, anchor)
			}
			seq, err := occurrence.NewResolver(nil).In(tt.loc).Sequence(got, nil)
			if err != nil {
				t.Fatalf("Sequence failed: %v", err)
			}
			for at, i := anchor, 0; i < 3; i++ {
				next, ok := seq.Next(at, false)
				if !ok {
					t.Fatalf("Next(%v) found nothing", at)
				}
				local := next.In(tokyo)
				if local.Weekday() != time.Monday || local.Hour() != 8 {
					t.Errorf("occurrence %d = %v, want Monday 08:00 Tokyo", i, local)
				}
				at = next
			}
		})
	}

	got, _ := store.GetItem(ctx, "trash")
	if got.Recurrence.Zone != "Asia/Tokyo" {
		t.Errorf("zone = %q, want Asia/Tokyo", got.Recurrence.Zone)
	}
}

func TestUpdateItem(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	if err := store.AddItem(ctx, weeklyItem()); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	bob := "bob"
	updated, err := store.UpdateItem(ctx, "trash", models.ItemPatch{ResponsibleUserID: &bob})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if updated.ResponsibleUserID != "bob" {
		t.Errorf("responsible = %q", updated.ResponsibleUserID)
	}
	got, _ := store.GetItem(ctx, "trash")
	if got.ResponsibleUserID != "bob" || got.Recurrence.Rule != "FREQ=WEEKLY;BYDAY=MO" {
		t.Errorf("persisted item = %+v", got)
	}

	if _, err := store.UpdateItem(ctx, "missing", models.ItemPatch{ResponsibleUserID: &bob}); !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("UpdateItem(missing) = %v", err)
	}
}

func TestListItemsFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	due := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	items := []models.Item{
		weeklyItem(),
		{ID: "tax", Type: models.ItemTypeTask, Title: "File taxes", DueAt: &due, Status: models.ItemStatusArchived, Visibility: models.VisibilityPrivate},
		{ID: "gym", Type: models.ItemTypeTask, Title: "Gym", DueAt: &due, Status: models.ItemStatusPending, ResponsibleUserID: "bob", Visibility: models.VisibilityPublic},
	}
	for _, item := range items {
		if err := store.AddItem(ctx, item); err != nil {
			t.Fatalf("AddItem(%s) failed: %v", item.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter models.ItemFilter
		want   int
	}{
		{"active only", models.ItemFilter{}, 2},
		{"with archived", models.ItemFilter{IncludeArchived: true}, 3},
		{"tasks", models.ItemFilter{Type: models.ItemTypeTask}, 1},
		{"bob", models.ItemFilter{ResponsibleUserID: "bob"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListItems(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListItems failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d items, want %d", len(got), tt.want)
			}
		})
	}
}

func TestLedgerOrderAndCascade(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	target := at.AddDate(0, 0, 1)

	entries := []models.OccurrenceAction{
		{ID: "a2", ItemID: "trash", OccurrenceAt: at, Kind: models.ActionCompleted, CreatedAt: created.Add(time.Microsecond)},
		{ID: "a1", ItemID: "trash", OccurrenceAt: at, Kind: models.ActionPostponed, PostponeKind: models.PostponeTomorrow, PostponedTo: &target, CreatedAt: created},
		{ID: "a3", ItemID: "trash", OccurrenceAt: at, Kind: models.ActionCancelled, CreatedAt: created.Add(time.Microsecond)},
		{ID: "b1", ItemID: "other", OccurrenceAt: at, Kind: models.ActionCompleted, CreatedAt: created},
	}
	var seqs []int64
	for _, e := range entries {
		saved, err := store.AppendAction(ctx, e)
		if err != nil {
			t.Fatalf("AppendAction(%s) failed: %v", e.ID, err)
		}
		seqs = append(seqs, saved.Seq)
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] <= seqs[i-1] {
			t.Errorf("sequence not increasing: %v", seqs)
		}
	}

	got, err := store.ListActionsForItem(ctx, "trash")
	if err != nil {
		t.Fatalf("ListActionsForItem failed: %v", err)
	}
	var order []string
	for _, a := range got {
		order = append(order, a.ID)
	}
	if len(order) != 3 || order[0] != "a1" || order[1] != "a2" || order[2] != "a3" {
		t.Errorf("order = %v, want [a1 a2 a3]", order)
	}
	if got[0].PostponedTo == nil || !got[0].PostponedTo.Equal(target) {
		t.Errorf("postponed_to = %v", got[0].PostponedTo)
	}

	if _, err := store.AppendAction(ctx, models.OccurrenceAction{ItemID: "trash", Kind: models.ActionCompleted}); err == nil {
		t.Error("invalid entry should be rejected")
	}

	if err := store.DeleteActionsForItem(ctx, "trash"); err != nil {
		t.Fatalf("DeleteActionsForItem failed: %v", err)
	}
	all, err := store.ListAllActions(ctx)
	if err != nil {
		t.Fatalf("ListAllActions failed: %v", err)
	}
	if len(all) != 1 || all[0].ItemID != "other" {
		t.Errorf("remaining = %+v, want only the other item's entry", all)
	}
}

func TestDeleteItem(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	if err := store.AddItem(ctx, weeklyItem()); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := store.DeleteItem(ctx, "trash"); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if err := store.DeleteItem(ctx, "trash"); !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("second DeleteItem = %v, want ErrItemNotFound", err)
	}
}

func TestSaveSettings(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	want := models.Settings{Timezone: "Europe/Paris", NotificationsEnabled: false, StrictWrites: true}
	if err := store.SaveSettings(ctx, want); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != want {
		t.Errorf("GetSettings = %+v, want %+v", got, want)
	}
}
