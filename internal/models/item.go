package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ItemType string

const (
	ItemTypeReminder ItemType = "reminder"
	ItemTypeEvent    ItemType = "event"
	ItemTypeTask     ItemType = "task"
)

type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusInProgress ItemStatus = "in_progress"
	ItemStatusCompleted  ItemStatus = "completed"
	ItemStatusCancelled  ItemStatus = "cancelled"
	ItemStatusArchived   ItemStatus = "archived"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ErrItemNotFound is returned by item stores when no item has the requested id.
var ErrItemNotFound = errors.New("item not found")

// Recurrence is an RFC 5545 RRULE body plus the instant the rule starts from.
// BYDAY and BYHOUR expand on the anchor's wall clock, so Zone keeps the IANA
// name the anchor was written in. Empty means the household timezone.
type Recurrence struct {
	Rule   string    `json:"rule"`
	Anchor time.Time `json:"anchor"`
	Zone   string    `json:"zone,omitempty"`
}

// AnchorIn returns the anchor in the zone its rule expands in: Zone when set,
// fallback otherwise. A nil fallback leaves the anchor as stored.
func (r Recurrence) AnchorIn(fallback *time.Location) time.Time {
	if r.Zone != "" {
		if loc, err := time.LoadLocation(r.Zone); err == nil {
			return r.Anchor.In(loc)
		}
	}
	if fallback != nil {
		return r.Anchor.In(fallback)
	}
	return r.Anchor
}

type Item struct {
	ID                string      `json:"id"`
	Type              ItemType    `json:"type"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	DueAt             *time.Time  `json:"due_at,omitempty"`   // reminders and tasks
	StartAt           *time.Time  `json:"start_at,omitempty"` // events
	EndAt             *time.Time  `json:"end_at,omitempty"`   // events
	Recurrence        *Recurrence `json:"recurrence,omitempty"`
	Status            ItemStatus  `json:"status"`
	ResponsibleUserID string      `json:"responsible_user_id,omitempty"`
	CreatedBy         string      `json:"created_by,omitempty"`
	Visibility        Visibility  `json:"visibility"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// IsRecurring reports whether per-occurrence state lives in the ledger rather than in Status.
func (i Item) IsRecurring() bool {
	return i.Recurrence != nil && strings.TrimSpace(i.Recurrence.Rule) != ""
}

// Anchor returns the primary temporal anchor: start_at for events, due_at otherwise.
func (i Item) Anchor() *time.Time {
	if i.Type == ItemTypeEvent {
		return i.StartAt
	}
	return i.DueAt
}

func (i *Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("item id cannot be empty")
	}
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("item title cannot be empty")
	}

	switch i.Type {
	case ItemTypeReminder, ItemTypeTask:
		if i.StartAt != nil || i.EndAt != nil {
			return fmt.Errorf("%s items use due_at, not start_at/end_at", i.Type)
		}
	case ItemTypeEvent:
		if i.DueAt != nil {
			return fmt.Errorf("event items use start_at/end_at, not due_at")
		}
		if i.StartAt != nil && i.EndAt != nil && i.EndAt.Before(*i.StartAt) {
			return fmt.Errorf("event end_at must not be before start_at")
		}
	default:
		return fmt.Errorf("invalid item type %q", i.Type)
	}

	switch i.Status {
	case ItemStatusPending, ItemStatusInProgress, ItemStatusCompleted, ItemStatusCancelled, ItemStatusArchived:
	default:
		return fmt.Errorf("invalid item status %q", i.Status)
	}

	switch i.Visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return fmt.Errorf("invalid visibility %q", i.Visibility)
	}

	if i.Recurrence != nil && strings.TrimSpace(i.Recurrence.Rule) != "" && i.Recurrence.Anchor.IsZero() {
		return fmt.Errorf("recurrence rule requires an anchor instant")
	}
	if i.Recurrence != nil && i.Recurrence.Zone != "" {
		if _, err := time.LoadLocation(i.Recurrence.Zone); err != nil {
			return fmt.Errorf("invalid recurrence zone %q: %w", i.Recurrence.Zone, err)
		}
	}

	return nil
}

// ItemPatch lists the fields the engine is allowed to mutate on an item. Nil means unchanged.
type ItemPatch struct {
	Status            *ItemStatus
	DueAt             *time.Time
	StartAt           *time.Time
	EndAt             *time.Time
	ResponsibleUserID *string
}

func (p ItemPatch) IsEmpty() bool {
	return p.Status == nil && p.DueAt == nil && p.StartAt == nil && p.EndAt == nil && p.ResponsibleUserID == nil
}

// Apply returns a copy of the item with the patch applied. The recurrence rule is never touched.
func (p ItemPatch) Apply(item Item) Item {
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.DueAt != nil {
		t := *p.DueAt
		item.DueAt = &t
	}
	if p.StartAt != nil {
		t := *p.StartAt
		item.StartAt = &t
	}
	if p.EndAt != nil {
		t := *p.EndAt
		item.EndAt = &t
	}
	if p.ResponsibleUserID != nil {
		item.ResponsibleUserID = *p.ResponsibleUserID
	}
	return item
}

type ItemFilter struct {
	IncludeArchived   bool
	Type              ItemType
	ResponsibleUserID string
}

func (f ItemFilter) Matches(item Item) bool {
	if !f.IncludeArchived && item.Status == ItemStatusArchived {
		return false
	}
	if f.Type != "" && item.Type != f.Type {
		return false
	}
	if f.ResponsibleUserID != "" && item.ResponsibleUserID != f.ResponsibleUserID {
		return false
	}
	return true
}
