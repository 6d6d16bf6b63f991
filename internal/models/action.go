package models

import (
	"fmt"
	"strings"
	"time"
)

type ActionKind string

const (
	ActionCompleted ActionKind = "completed"
	ActionCancelled ActionKind = "cancelled"
	ActionPostponed ActionKind = "postponed"
	// ActionReopened supersedes an earlier action and puts the occurrence back to pending.
	ActionReopened ActionKind = "reopened"
)

type PostponeKind string

const (
	PostponeNextOccurrence PostponeKind = "next_occurrence"
	PostponeTomorrow       PostponeKind = "tomorrow"
	PostponeCustom         PostponeKind = "custom"
	PostponeAISlot         PostponeKind = "ai_slot"
)

// OccurrenceAction is one ledger entry. Entries are appended, never edited.
type OccurrenceAction struct {
	ID           string       `json:"id"`
	ItemID       string       `json:"item_id"`
	OccurrenceAt time.Time    `json:"occurrence_at"`
	Kind         ActionKind   `json:"kind"`
	Reason       string       `json:"reason,omitempty"`
	PostponeKind PostponeKind `json:"postpone_kind,omitempty"`
	PostponedTo  *time.Time   `json:"postponed_to,omitempty"`
	ActorID      string       `json:"actor_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	Seq          int64        `json:"seq"` // assigned by the ledger store on append
}

func (a *OccurrenceAction) Validate() error {
	if strings.TrimSpace(a.ItemID) == "" {
		return fmt.Errorf("occurrence action item id cannot be empty")
	}
	if a.OccurrenceAt.IsZero() {
		return fmt.Errorf("occurrence action instant cannot be empty")
	}
	if a.CreatedAt.IsZero() {
		return fmt.Errorf("occurrence action created_at cannot be empty")
	}

	switch a.Kind {
	case ActionCompleted, ActionCancelled, ActionReopened:
		if a.PostponeKind != "" || a.PostponedTo != nil {
			return fmt.Errorf("%s actions cannot carry postponement fields", a.Kind)
		}
	case ActionPostponed:
		switch a.PostponeKind {
		case PostponeNextOccurrence:
			if a.PostponedTo != nil {
				return fmt.Errorf("next_occurrence postponements have no explicit target")
			}
		case PostponeTomorrow, PostponeCustom:
			if a.PostponedTo == nil {
				return fmt.Errorf("%s postponements require a target instant", a.PostponeKind)
			}
		default:
			return fmt.Errorf("invalid postpone kind %q", a.PostponeKind)
		}
	default:
		return fmt.Errorf("invalid action kind %q", a.Kind)
	}

	return nil
}

// SameEffect reports whether two entries would leave the occurrence in the same state.
func (a OccurrenceAction) SameEffect(b OccurrenceAction) bool {
	if a.Kind != b.Kind || a.PostponeKind != b.PostponeKind {
		return false
	}
	if (a.PostponedTo == nil) != (b.PostponedTo == nil) {
		return false
	}
	return a.PostponedTo == nil || NormalizeInstant(*a.PostponedTo).Equal(NormalizeInstant(*b.PostponedTo))
}

// NormalizeInstant maps an occurrence instant to its ledger key form: UTC, whole seconds.
func NormalizeInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// AssignmentNotice is sent when an action hands an item to someone other than the actor.
type AssignmentNotice struct {
	ItemID                    string   `json:"item_id"`
	ItemTitle                 string   `json:"item_title"`
	ItemType                  ItemType `json:"item_type"`
	NewResponsibleUserID      string   `json:"new_responsible_user_id"`
	PreviousResponsibleUserID string   `json:"previous_responsible_user_id,omitempty"`
	ActingUserID              string   `json:"acting_user_id"`
}
