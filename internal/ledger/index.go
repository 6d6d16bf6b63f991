// Package ledger indexes the append-only occurrence action log so that each
// (item id, occurrence instant) key resolves to its most recent entry.
package ledger

import (
	"sort"
	"time"

	"github.com/elioaoun07/homeagenda/internal/models"
)

// Key identifies one occurrence. At is the normalised instant in Unix seconds.
type Key struct {
	ItemID string
	At     int64
}

func KeyOf(itemID string, at time.Time) Key {
	return Key{ItemID: itemID, At: models.NormalizeInstant(at).Unix()}
}

// Index holds the active entry per key. It is built once per refresh from entries in
// store order and is not safe for concurrent mutation.
type Index struct {
	latest map[Key]models.OccurrenceAction
	byItem map[string][]Key
	total  int
}

func NewIndex(actions []models.OccurrenceAction) *Index {
	ix := &Index{
		latest: make(map[Key]models.OccurrenceAction),
		byItem: make(map[string][]Key),
	}
	for _, a := range actions {
		ix.Add(a)
	}
	return ix
}

// Add records an entry and reports whether it became the active one for its key.
// A later creation time wins; on equal creation times the entry added last wins.
func (ix *Index) Add(a models.OccurrenceAction) bool {
	ix.total++
	key := KeyOf(a.ItemID, a.OccurrenceAt)
	current, ok := ix.latest[key]
	if !ok {
		ix.byItem[a.ItemID] = append(ix.byItem[a.ItemID], key)
	} else if a.CreatedAt.Before(current.CreatedAt) {
		return false
	}
	ix.latest[key] = a
	return true
}

// Latest returns the active entry for the occurrence of itemID at at.
func (ix *Index) Latest(itemID string, at time.Time) (models.OccurrenceAction, bool) {
	a, ok := ix.latest[KeyOf(itemID, at)]
	return a, ok
}

// ForItem returns the active entries of one item ordered by occurrence instant.
func (ix *Index) ForItem(itemID string) []models.OccurrenceAction {
	keys := ix.byItem[itemID]
	out := make([]models.OccurrenceAction, 0, len(keys))
	for _, k := range keys {
		out = append(out, ix.latest[k])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurrenceAt.Before(out[j].OccurrenceAt)
	})
	return out
}

// PostponedTargets returns the targets of the item's active postponements, ascending
// and de-duplicated. next_occurrence postponements carry no target and are skipped.
func (ix *Index) PostponedTargets(itemID string) []time.Time {
	seen := make(map[int64]bool)
	var out []time.Time
	for _, k := range ix.byItem[itemID] {
		a := ix.latest[k]
		if a.Kind != models.ActionPostponed || a.PostponedTo == nil {
			continue
		}
		t := models.NormalizeInstant(*a.PostponedTo)
		if seen[t.Unix()] {
			continue
		}
		seen[t.Unix()] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Keys returns the number of distinct occurrence keys.
func (ix *Index) Keys() int {
	return len(ix.latest)
}

// Entries returns the number of entries added, superseded ones included.
func (ix *Index) Entries() int {
	return ix.total
}
