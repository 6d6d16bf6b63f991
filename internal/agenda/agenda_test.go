package agenda

import (
	"testing"
	"time"

	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/occurrence"
)

var (
	anchor = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	jan8   = time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)
	jan15  = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
)

func trash() models.Item {
	a := anchor
	return models.Item{
		ID:         "trash",
		Type:       models.ItemTypeReminder,
		Title:      "Take out trash",
		DueAt:      &a,
		Recurrence: &models.Recurrence{Rule: "FREQ=WEEKLY;BYDAY=MO", Anchor: anchor},
		Status:     models.ItemStatusPending,
		Visibility: models.VisibilityPublic,
	}
}

func task(id, title string, due *time.Time, status models.ItemStatus) models.Item {
	return models.Item{ID: id, Type: models.ItemTypeTask, Title: title, DueAt: due, Status: status, Visibility: models.VisibilityPublic}
}

func ptr(t time.Time) *time.Time { return &t }

func ids(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Item.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEndToEndAutoArchive(t *testing.T) {
	items := []models.Item{trash()}
	actions := []models.OccurrenceAction{{
		ID: "a1", ItemID: "trash", OccurrenceAt: jan8, Kind: models.ActionCompleted,
		CreatedAt: jan8.Add(time.Hour),
	}}
	opts := Options{Location: time.UTC}

	t.Run("same week", func(t *testing.T) {
		a := Build(items, actions, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), opts)
		if len(a.Completed) != 1 || !a.Completed[0].At.Equal(jan8) {
			t.Fatalf("Completed = %+v, want the Jan 8 occurrence", a.Completed)
		}
		if a.Completed[0].Status != occurrence.StatusCompleted {
			t.Errorf("status = %q", a.Completed[0].Status)
		}
		if len(a.Upcoming) != 1 || !a.Upcoming[0].Entries[0].At.Equal(jan15) {
			t.Errorf("Upcoming = %+v, want Jan 15", a.Upcoming)
		}
		if len(a.Overdue) != 0 {
			t.Errorf("Overdue = %v, want empty", ids(a.Overdue))
		}
	})

	t.Run("two weeks later", func(t *testing.T) {
		a := Build(items, actions, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), opts)
		if len(a.Completed) != 0 {
			t.Errorf("Completed = %+v, want empty", a.Completed)
		}
		if len(a.Overdue) != 1 || !a.Overdue[0].At.Equal(jan15) {
			t.Fatalf("Overdue = %+v, want Jan 15", a.Overdue)
		}
		for _, e := range append(append(a.Today, a.Tomorrow...), a.Completed...) {
			if e.At != nil && e.At.Equal(jan8) {
				t.Error("Jan 8 occurrence still visible")
			}
		}
	})
}

func TestArchiveBoundary(t *testing.T) {
	wednesday := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 1, 14, 20, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	items := []models.Item{
		task("old", "Last week", &sunday, models.ItemStatusCompleted),
		task("new", "This week", &monday, models.ItemStatusCancelled),
	}
	a := Build(items, nil, wednesday, Options{Location: time.UTC})

	if got := ids(a.Completed); !equal(got, []string{"new"}) {
		t.Errorf("Completed = %v, want [new]", got)
	}
	if a.Archived != 1 {
		t.Errorf("Archived = %d, want 1", a.Archived)
	}
	if !a.WeekStart.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("WeekStart = %v, want Monday midnight", a.WeekStart)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}

func TestBucketsAndOrdering(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	items := []models.Item{
		task("yesterday", "Pay rent", ptr(now.Add(-24*time.Hour)), models.ItemStatusPending),
		task("today-late", "Water plants", ptr(now.Add(6*time.Hour)), models.ItemStatusPending),
		task("today-early", "Feed cat", ptr(now.Add(-3*time.Hour)), models.ItemStatusInProgress),
		task("undated", "Someday", nil, models.ItemStatusPending),
		task("tomorrow-b", "Buy milk", ptr(now.Add(22*time.Hour)), models.ItemStatusPending),
		task("tomorrow-a", "Buy bread", ptr(now.Add(22*time.Hour)), models.ItemStatusPending),
		task("later-2", "Dentist", ptr(now.Add(5*24*time.Hour)), models.ItemStatusPending),
		task("later-1", "Vet", ptr(now.Add(3*24*time.Hour)), models.ItemStatusPending),
		task("done-1", "Laundry", ptr(now.Add(-2*time.Hour)), models.ItemStatusCompleted),
		task("done-2", "Dishes", ptr(now.Add(-time.Hour)), models.ItemStatusCompleted),
		task("done-undated", "Tidy", nil, models.ItemStatusCompleted),
		task("gone", "Archived", ptr(now), models.ItemStatusArchived),
	}
	a := Build(items, nil, now, Options{Location: time.UTC})

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"overdue", ids(a.Overdue), []string{"yesterday"}},
		{"today", ids(a.Today), []string{"today-early", "today-late", "undated"}},
		{"tomorrow", ids(a.Tomorrow), []string{"tomorrow-a", "tomorrow-b"}},
		{"completed", ids(a.Completed), []string{"done-2", "done-1", "done-undated"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !equal(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if len(a.Upcoming) != 2 {
		t.Fatalf("Upcoming has %d groups, want 2", len(a.Upcoming))
	}
	if a.Upcoming[0].Entries[0].Item.ID != "later-1" || a.Upcoming[1].Entries[0].Item.ID != "later-2" {
		t.Errorf("Upcoming out of order: %+v", a.Upcoming)
	}
	if !a.Upcoming[0].Date.Equal(time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first group date = %v", a.Upcoming[0].Date)
	}
}

func TestInvalidRuleIsIsolated(t *testing.T) {
	broken := trash()
	broken.ID = "broken"
	broken.Recurrence = &models.Recurrence{Rule: "FREQ=FORTNIGHTLY", Anchor: anchor}

	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	a := Build([]models.Item{broken, trash()}, nil, now, Options{Location: time.UTC})

	if len(a.Faults) != 1 || a.Faults[0].ItemID != "broken" {
		t.Fatalf("Faults = %+v, want one for broken", a.Faults)
	}
	if len(a.Today) != 1 || a.Today[0].At != nil || a.Today[0].Fault == nil {
		t.Errorf("Today = %+v, want the broken item without an instant", a.Today)
	}
	if len(a.Overdue) != 1 || a.Overdue[0].Item.ID != "trash" || !a.Overdue[0].At.Equal(jan8) {
		t.Errorf("Overdue = %+v, want trash at Jan 8", a.Overdue)
	}
}

func TestRecurringWalksPastDoneOccurrences(t *testing.T) {
	now := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	actions := []models.OccurrenceAction{
		{ItemID: "trash", OccurrenceAt: jan15, Kind: models.ActionCompleted, CreatedAt: jan15},
		{ItemID: "trash", OccurrenceAt: jan15.AddDate(0, 0, 7), Kind: models.ActionCancelled, CreatedAt: jan15},
	}
	a := Build([]models.Item{trash()}, actions, now, Options{Location: time.UTC})

	if len(a.Completed) != 2 {
		t.Fatalf("Completed = %+v, want Jan 15 and Jan 22", a.Completed)
	}
	if !a.Completed[0].At.After(*a.Completed[1].At) {
		t.Error("Completed should be most recent first")
	}
	if len(a.Upcoming) != 1 || !a.Upcoming[0].Entries[0].At.Equal(jan15.AddDate(0, 0, 14)) {
		t.Errorf("Upcoming = %+v, want Jan 29", a.Upcoming)
	}
}

func TestPostponedOccurrenceMoves(t *testing.T) {
	now := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	target := time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)
	actions := []models.OccurrenceAction{{
		ItemID: "trash", OccurrenceAt: jan8, Kind: models.ActionPostponed,
		PostponeKind: models.PostponeTomorrow, PostponedTo: &target, CreatedAt: jan8,
	}}
	a := Build([]models.Item{trash()}, actions, now, Options{Location: time.UTC})

	if len(a.Today) != 0 {
		t.Errorf("Today = %+v, postponed occurrence should have moved", a.Today)
	}
	if len(a.Tomorrow) != 1 || !a.Tomorrow[0].At.Equal(target) {
		t.Errorf("Tomorrow = %+v, want the postponed target", a.Tomorrow)
	}
}

func TestLocationDecidesDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC) // Jan 11 06:00 local
	due := time.Date(2024, 1, 11, 1, 0, 0, 0, time.UTC)  // Jan 11 11:00 local

	a := Build([]models.Item{task("t", "Call mum", &due, models.ItemStatusPending)}, nil, now, Options{Location: loc})
	if len(a.Today) != 1 {
		t.Errorf("Today = %v, Tomorrow = %v; want today in the configured zone", ids(a.Today), ids(a.Tomorrow))
	}
}
