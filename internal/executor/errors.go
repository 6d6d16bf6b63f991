package executor

import (
	"errors"
	"fmt"
	"time"

	"github.com/elioaoun07/homeagenda/internal/models"
)

var (
	ErrItemArchived          = errors.New("item is archived")
	ErrNotAnOccurrence       = errors.New("instant is not an occurrence of this item")
	ErrMissingOccurrence     = errors.New("recurring items require an occurrence instant")
	ErrRequiresRecurrence    = errors.New("postpone kind requires a recurring item")
	ErrInvalidPostponeTarget = errors.New("invalid postpone target")
)

// UnsupportedPostponeKindError rejects postpone kinds the executor does not implement.
type UnsupportedPostponeKindError struct {
	Kind models.PostponeKind
}

func (e *UnsupportedPostponeKindError) Error() string {
	if e.Kind == models.PostponeAISlot {
		return fmt.Sprintf("postpone kind %q is not implemented", e.Kind)
	}
	return fmt.Sprintf("unsupported postpone kind %q", e.Kind)
}

// StaleWriteError reports that the occurrence changed after the caller last read it.
// It is returned only in strict mode; otherwise the write proceeds and is logged.
type StaleWriteError struct {
	ItemID       string
	OccurrenceAt time.Time
	Observed     time.Time
	Latest       time.Time
}

func (e *StaleWriteError) Error() string {
	return fmt.Sprintf("stale write for item %s at %s: latest entry created %s, caller observed %s",
		e.ItemID, e.OccurrenceAt.Format(time.RFC3339), e.Latest.Format(time.RFC3339Nano), e.Observed.Format(time.RFC3339Nano))
}

// CascadeError means the item was deleted but its ledger entries were not. The ledger
// must be cleaned with RetryCascade before the id can be trusted again.
type CascadeError struct {
	ItemID string
	Err    error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("item %s deleted but its occurrence actions were not: %v", e.ItemID, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
