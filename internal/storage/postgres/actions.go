package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elioaoun07/homeagenda/internal/models"
)

const actionColumns = `seq, id, item_id, occurrence_at, kind, reason, postpone_kind, postponed_to, actor_id, created_at`

func scanAction(row rowScanner) (models.OccurrenceAction, error) {
	var a models.OccurrenceAction
	var kind, postponeKind string
	var postponedTo sql.NullTime

	if err := row.Scan(&a.Seq, &a.ID, &a.ItemID, &a.OccurrenceAt, &kind, &a.Reason, &postponeKind, &postponedTo, &a.ActorID, &a.CreatedAt); err != nil {
		return models.OccurrenceAction{}, err
	}
	a.Kind = models.ActionKind(kind)
	a.PostponeKind = models.PostponeKind(postponeKind)
	a.OccurrenceAt = a.OccurrenceAt.UTC()
	a.PostponedTo = timePtr(postponedTo)
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

// AppendAction inserts a ledger entry; the BIGSERIAL seq breaks created_at ties.
func (s *Store) AppendAction(ctx context.Context, action models.OccurrenceAction) (models.OccurrenceAction, error) {
	if err := action.Validate(); err != nil {
		return models.OccurrenceAction{}, err
	}
	action.OccurrenceAt = models.NormalizeInstant(action.OccurrenceAt)
	// TIMESTAMPTZ keeps microseconds.
	action.CreatedAt = action.CreatedAt.UTC().Truncate(time.Microsecond)
	if action.PostponedTo != nil {
		t := models.NormalizeInstant(*action.PostponedTo)
		action.PostponedTo = &t
	}

	err := s.db.QueryRowContext(ctx, `
INSERT INTO occurrence_actions (id, item_id, occurrence_at, kind, reason, postpone_kind, postponed_to, actor_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING seq`,
		action.ID, action.ItemID, action.OccurrenceAt, string(action.Kind), action.Reason,
		string(action.PostponeKind), nullTime(action.PostponedTo), action.ActorID, action.CreatedAt,
	).Scan(&action.Seq)
	if err != nil {
		return models.OccurrenceAction{}, fmt.Errorf("failed to append occurrence action: %w", err)
	}
	return action, nil
}

func (s *Store) ListActionsForItem(ctx context.Context, itemID string) ([]models.OccurrenceAction, error) {
	return s.queryActions(ctx, `SELECT `+actionColumns+` FROM occurrence_actions WHERE item_id = $1 ORDER BY created_at, seq`, itemID)
}

func (s *Store) ListAllActions(ctx context.Context) ([]models.OccurrenceAction, error) {
	return s.queryActions(ctx, `SELECT `+actionColumns+` FROM occurrence_actions ORDER BY created_at, seq`)
}

func (s *Store) queryActions(ctx context.Context, query string, args ...any) ([]models.OccurrenceAction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrence actions: %w", err)
	}
	defer rows.Close()

	var out []models.OccurrenceAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan occurrence action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteActionsForItem(ctx context.Context, itemID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM occurrence_actions WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("failed to delete occurrence actions for %s: %w", itemID, err)
	}
	return nil
}
