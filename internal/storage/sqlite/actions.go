package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/elioaoun07/homeagenda/internal/models"
)

const actionColumns = `seq, id, item_id, occurrence_at, kind, reason, postpone_kind, postponed_to, actor_id, created_at`

func scanAction(row rowScanner) (models.OccurrenceAction, error) {
	var a models.OccurrenceAction
	var kind, postponeKind, occurrenceAt, createdAt string
	var postponedTo sql.NullString

	if err := row.Scan(&a.Seq, &a.ID, &a.ItemID, &occurrenceAt, &kind, &a.Reason, &postponeKind, &postponedTo, &a.ActorID, &createdAt); err != nil {
		return models.OccurrenceAction{}, err
	}
	a.Kind = models.ActionKind(kind)
	a.PostponeKind = models.PostponeKind(postponeKind)

	var err error
	if a.OccurrenceAt, err = parseTime(occurrenceAt); err != nil {
		return models.OccurrenceAction{}, err
	}
	if a.PostponedTo, err = parseNullTime(postponedTo); err != nil {
		return models.OccurrenceAction{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.OccurrenceAction{}, err
	}
	return a, nil
}

// AppendAction inserts a ledger entry. Existing entries are never updated.
func (s *Store) AppendAction(ctx context.Context, action models.OccurrenceAction) (models.OccurrenceAction, error) {
	if err := action.Validate(); err != nil {
		return models.OccurrenceAction{}, err
	}
	action.OccurrenceAt = models.NormalizeInstant(action.OccurrenceAt)
	action.CreatedAt = action.CreatedAt.UTC()
	if action.PostponedTo != nil {
		t := models.NormalizeInstant(*action.PostponedTo)
		action.PostponedTo = &t
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO occurrence_actions (id, item_id, occurrence_at, kind, reason, postpone_kind, postponed_to, actor_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		action.ID, action.ItemID, formatTime(action.OccurrenceAt), string(action.Kind), action.Reason,
		string(action.PostponeKind), formatNullTime(action.PostponedTo), action.ActorID, formatTime(action.CreatedAt),
	)
	if err != nil {
		return models.OccurrenceAction{}, fmt.Errorf("failed to append occurrence action: %w", err)
	}
	if action.Seq, err = res.LastInsertId(); err != nil {
		return models.OccurrenceAction{}, fmt.Errorf("failed to read occurrence action sequence: %w", err)
	}
	return action, nil
}

func (s *Store) ListActionsForItem(ctx context.Context, itemID string) ([]models.OccurrenceAction, error) {
	return s.queryActions(ctx, `SELECT `+actionColumns+` FROM occurrence_actions WHERE item_id = ? ORDER BY created_at, seq`, itemID)
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
	if _, err := s.db.ExecContext(ctx, `DELETE FROM occurrence_actions WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete occurrence actions for %s: %w", itemID, err)
	}
	return nil
}
