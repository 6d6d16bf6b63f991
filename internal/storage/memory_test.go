package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elioaoun07/homeagenda/internal/models"
)

func memoryTask(id string) models.Item {
	due := time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)
	return models.Item{
		ID:         id,
		Type:       models.ItemTypeTask,
		Title:      "Task " + id,
		DueAt:      &due,
		Status:     models.ItemStatusPending,
		Visibility: models.VisibilityPublic,
	}
}

func TestMemoryStoreItems(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.AddItem(ctx, memoryTask("a")); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if err := s.AddItem(ctx, memoryTask("a")); err == nil {
		t.Error("expected a duplicate id to be rejected")
	}
	bad := memoryTask("b")
	bad.Title = ""
	if err := s.AddItem(ctx, bad); err == nil {
		t.Error("expected an invalid item to be rejected")
	}

	got, err := s.GetItem(ctx, "a")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	*got.DueAt = got.DueAt.AddDate(1, 0, 0)
	again, _ := s.GetItem(ctx, "a")
	if again.DueAt.Year() != 2024 {
		t.Error("GetItem() returned shared state")
	}

	status := models.ItemStatusCompleted
	updated, err := s.UpdateItem(ctx, "a", models.ItemPatch{Status: &status})
	if err != nil || updated.Status != models.ItemStatusCompleted {
		t.Fatalf("UpdateItem() = %+v, %v", updated, err)
	}
	badStatus := models.ItemStatus("done")
	if _, err := s.UpdateItem(ctx, "a", models.ItemPatch{Status: &badStatus}); err == nil {
		t.Error("expected an invalid patch to be rejected")
	}

	if err := s.DeleteItem(ctx, "a"); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	if _, err := s.GetItem(ctx, "a"); !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("GetItem() after delete error = %v", err)
	}
	if err := s.DeleteItem(ctx, "a"); !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("second DeleteItem() error = %v", err)
	}
}

func TestMemoryStoreListItems(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	for _, id := range []string{"c", "a", "b"} {
		item := memoryTask(id)
		if id == "b" {
			item.Status = models.ItemStatusArchived
		}
		if err := s.AddItem(ctx, item); err != nil {
			t.Fatalf("AddItem(%s) error = %v", id, err)
		}
	}

	items, err := s.ListItems(ctx, models.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 2 || items[0].ID != "c" || items[1].ID != "a" {
		t.Errorf("ListItems() = %v, want c, a in creation order", ids(items))
	}

	items, _ = s.ListItems(ctx, models.ItemFilter{IncludeArchived: true})
	if len(items) != 3 {
		t.Errorf("ListItems(IncludeArchived) returned %d items", len(items))
	}
}

func TestMemoryStoreLedger(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	at := time.Date(2024, 1, 8, 8, 0, 0, 500, time.UTC)
	created := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	appendAction := func(itemID string, kind models.ActionKind, createdAt time.Time) models.OccurrenceAction {
		t.Helper()
		a, err := s.AppendAction(ctx, models.OccurrenceAction{ItemID: itemID, OccurrenceAt: at, Kind: kind, CreatedAt: createdAt})
		if err != nil {
			t.Fatalf("AppendAction() error = %v", err)
		}
		return a
	}

	first := appendAction("x", models.ActionCompleted, created)
	if first.Seq != 1 || first.OccurrenceAt.Nanosecond() != 0 {
		t.Errorf("AppendAction() = %+v, want seq 1 and a whole-second instant", first)
	}
	appendAction("x", models.ActionReopened, created) // same created_at: seq breaks the tie
	appendAction("x", models.ActionCancelled, created.Add(-time.Minute))
	appendAction("y", models.ActionCompleted, created)

	if _, err := s.AppendAction(ctx, models.OccurrenceAction{ItemID: "x", Kind: models.ActionCompleted}); err == nil {
		t.Error("expected an invalid action to be rejected")
	}

	got, err := s.ListActionsForItem(ctx, "x")
	if err != nil {
		t.Fatalf("ListActionsForItem() error = %v", err)
	}
	kinds := []models.ActionKind{models.ActionCancelled, models.ActionCompleted, models.ActionReopened}
	if len(got) != len(kinds) {
		t.Fatalf("ListActionsForItem() returned %d actions", len(got))
	}
	for i, k := range kinds {
		if got[i].Kind != k {
			t.Errorf("action %d = %s, want %s", i, got[i].Kind, k)
		}
	}

	if err := s.DeleteActionsForItem(ctx, "x"); err != nil {
		t.Fatalf("DeleteActionsForItem() error = %v", err)
	}
	all, _ := s.ListAllActions(ctx)
	if len(all) != 1 || all[0].ItemID != "y" {
		t.Errorf("ListAllActions() after cascade = %+v", all)
	}
}

func TestMemoryStoreSettings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	got, _ := s.GetSettings(ctx)
	if got != models.DefaultSettings() {
		t.Errorf("GetSettings() = %+v, want defaults", got)
	}
	want := models.Settings{Timezone: "Asia/Beirut", NotificationsEnabled: false, StrictWrites: true}
	if err := s.SaveSettings(ctx, want); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if got, _ := s.GetSettings(ctx); got != want {
		t.Errorf("GetSettings() = %+v, want %+v", got, want)
	}
}

func ids(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
