// Package agenda buckets the active item set into Overdue, Today, Tomorrow,
// Upcoming and Completed, hiding completed work from before the current week.
package agenda

import (
	"sort"
	"time"

	"github.com/elioaoun07/homeagenda/internal/constants"
	"github.com/elioaoun07/homeagenda/internal/ledger"
	"github.com/elioaoun07/homeagenda/internal/logger"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/occurrence"
	"github.com/elioaoun07/homeagenda/internal/utils"
)

type Bucket string

const (
	BucketOverdue   Bucket = "overdue"
	BucketToday     Bucket = "today"
	BucketTomorrow  Bucket = "tomorrow"
	BucketUpcoming  Bucket = "upcoming"
	BucketCompleted Bucket = "completed"
)

// Entry is one occurrence shown on the agenda. At is nil when the item has no
// computable instant.
type Entry struct {
	Item   models.Item
	At     *time.Time
	Status occurrence.Status
	Fault  error
}

type DateGroup struct {
	Date    time.Time // local midnight
	Entries []Entry
}

type Fault struct {
	ItemID string
	Err    error
}

type Agenda struct {
	Overdue   []Entry
	Today     []Entry
	Tomorrow  []Entry
	Upcoming  []DateGroup
	Completed []Entry

	Faults []Fault
	// Archived counts done occurrences hidden because they fall before WeekStart.
	Archived int

	GeneratedAt time.Time
	WeekStart   time.Time
}

// Len is the number of visible entries.
func (a Agenda) Len() int {
	n := len(a.Overdue) + len(a.Today) + len(a.Tomorrow) + len(a.Completed)
	for _, g := range a.Upcoming {
		n += len(g.Entries)
	}
	return n
}

type Options struct {
	// Location decides calendar days and the week boundary. Defaults to time.Local.
	Location *time.Location
	// WeekStart overrides the auto-archive boundary (Monday 00:00 of now's week).
	WeekStart time.Time
	Resolver  *occurrence.Resolver
}

type builder struct {
	now       time.Time
	loc       *time.Location
	weekStart time.Time
	today     time.Time
	tomorrow  time.Time
	upcoming  map[time.Time][]Entry
	out       Agenda
}

// Build derives the agenda from scratch. It never fails: items whose rule cannot be
// parsed are listed under Today without an instant and reported in Faults.
func Build(items []models.Item, actions []models.OccurrenceAction, now time.Time, opts Options) Agenda {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = occurrence.NewResolver(nil)
	}
	resolver = resolver.In(loc)
	weekStart := opts.WeekStart
	if weekStart.IsZero() {
		weekStart = utils.StartOfWeek(now, loc)
	}

	today := utils.StartOfDay(now, loc)
	b := &builder{
		now:       now,
		loc:       loc,
		weekStart: weekStart,
		today:     today,
		tomorrow:  today.AddDate(0, 0, 1),
		upcoming:  make(map[time.Time][]Entry),
		out:       Agenda{GeneratedAt: now, WeekStart: weekStart},
	}

	ix := ledger.NewIndex(actions)
	logger.Debug("Building agenda", "items", len(items), "occurrences", ix.Keys(), "ledger_entries", ix.Entries())
	for _, item := range items {
		if item.Status == models.ItemStatusArchived {
			continue
		}
		if item.IsRecurring() {
			b.addRecurring(resolver, item, ix)
		} else {
			b.addSingle(item)
		}
	}
	return b.finish()
}

func (b *builder) addSingle(item models.Item) {
	var at *time.Time
	if anchor := item.Anchor(); anchor != nil {
		t := *anchor
		at = &t
	}
	b.place(Entry{Item: item, At: at, Status: occurrence.Resolve(item, time.Time{}, nil)})
}

// addRecurring emits the done occurrences in front of now and the nearest pending one.
func (b *builder) addRecurring(resolver *occurrence.Resolver, item models.Item, ix *ledger.Index) {
	seq, err := resolver.Sequence(item, ix)
	if err != nil {
		logger.Warn("Skipping unparseable recurrence rule", "item", item.ID, "rule", item.Recurrence.Rule, "error", err)
		b.out.Faults = append(b.out.Faults, Fault{ItemID: item.ID, Err: err})
		b.place(Entry{Item: item, Status: occurrence.StatusPending, Fault: err})
		return
	}

	at, ok := seq.Front(b.now)
	for i := 0; ok && i < constants.AgendaWalkLimit; i++ {
		status := occurrence.Resolve(item, at, ix)
		t := at
		b.place(Entry{Item: item, At: &t, Status: status})
		if !status.Done() {
			return
		}
		at, ok = seq.Next(at, false)
	}
}

func (b *builder) place(e Entry) {
	if e.Status.Done() {
		if e.At != nil && e.At.Before(b.weekStart) {
			b.out.Archived++
			return
		}
		b.out.Completed = append(b.out.Completed, e)
		return
	}

	if e.At == nil {
		b.out.Today = append(b.out.Today, e)
		return
	}
	day := utils.StartOfDay(*e.At, b.loc)
	switch {
	case day.Equal(b.today):
		b.out.Today = append(b.out.Today, e)
	case e.At.Before(b.now):
		b.out.Overdue = append(b.out.Overdue, e)
	case day.Equal(b.tomorrow):
		b.out.Tomorrow = append(b.out.Tomorrow, e)
	default:
		b.upcoming[day] = append(b.upcoming[day], e)
	}
}

func (b *builder) finish() Agenda {
	sortAscending(b.out.Overdue)
	sortAscending(b.out.Today)
	sortAscending(b.out.Tomorrow)

	for day, entries := range b.upcoming {
		sortAscending(entries)
		b.out.Upcoming = append(b.out.Upcoming, DateGroup{Date: day, Entries: entries})
	}
	sort.Slice(b.out.Upcoming, func(i, j int) bool {
		return b.out.Upcoming[i].Date.Before(b.out.Upcoming[j].Date)
	})

	sort.SliceStable(b.out.Completed, func(i, j int) bool {
		x, y := b.out.Completed[i], b.out.Completed[j]
		if x.At == nil || y.At == nil || x.At.Equal(*y.At) {
			if (x.At == nil) != (y.At == nil) {
				return y.At == nil
			}
			return tiebreak(x, y)
		}
		return x.At.After(*y.At)
	})
	return b.out
}

// sortAscending orders by instant with instant-less entries last.
func sortAscending(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		x, y := entries[i], entries[j]
		if x.At == nil || y.At == nil || x.At.Equal(*y.At) {
			if (x.At == nil) != (y.At == nil) {
				return y.At == nil
			}
			return tiebreak(x, y)
		}
		return x.At.Before(*y.At)
	})
}

func tiebreak(x, y Entry) bool {
	if x.Item.Title != y.Item.Title {
		return x.Item.Title < y.Item.Title
	}
	return x.Item.ID < y.Item.ID
}
