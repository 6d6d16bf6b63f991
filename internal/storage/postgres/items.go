package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/elioaoun07/homeagenda/internal/models"
)

const itemColumns = `id, type, title, description, due_at, start_at, end_at, recurrence_rule, recurrence_anchor,
       recurrence_zone, status, responsible_user_id, created_by, visibility, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.Item, error) {
	var item models.Item
	var itemType, zone, status, visibility string
	var dueAt, startAt, endAt, anchor sql.NullTime
	var rule sql.NullString

	err := row.Scan(
		&item.ID, &itemType, &item.Title, &item.Description, &dueAt, &startAt, &endAt, &rule, &anchor,
		&zone, &status, &item.ResponsibleUserID, &item.CreatedBy, &visibility, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return models.Item{}, err
	}

	item.Type = models.ItemType(itemType)
	item.Status = models.ItemStatus(status)
	item.Visibility = models.Visibility(visibility)
	item.DueAt = timePtr(dueAt)
	item.StartAt = timePtr(startAt)
	item.EndAt = timePtr(endAt)
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	if rule.Valid && rule.String != "" {
		item.Recurrence = &models.Recurrence{Rule: rule.String, Zone: zone}
		if anchor.Valid {
			item.Recurrence.Anchor = anchor.Time.UTC()
		}
	}
	return item, nil
}

func (s *Store) AddItem(ctx context.Context, item models.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	now := s.now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	var rule sql.NullString
	var anchor sql.NullTime
	var zone string
	if item.Recurrence != nil && item.Recurrence.Rule != "" {
		rule = sql.NullString{String: item.Recurrence.Rule, Valid: true}
		anchor = nullTime(&item.Recurrence.Anchor)
		zone = item.Recurrence.Zone
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO items (`+itemColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		item.ID, string(item.Type), item.Title, item.Description,
		nullTime(item.DueAt), nullTime(item.StartAt), nullTime(item.EndAt), rule, anchor,
		zone, string(item.Status), item.ResponsibleUserID, item.CreatedBy, string(item.Visibility),
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, id string) (models.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, fmt.Errorf("item %s: %w", id, models.ErrItemNotFound)
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to read item %s: %w", id, err)
	}
	return item, nil
}

func (s *Store) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !filter.IncludeArchived {
		where = append(where, "status <> "+arg(string(models.ItemStatusArchived)))
	}
	if filter.Type != "" {
		where = append(where, "type = "+arg(string(filter.Type)))
	}
	if filter.ResponsibleUserID != "" {
		where = append(where, "responsible_user_id = "+arg(filter.ResponsibleUserID))
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) UpdateItem(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, fmt.Errorf("item %s: %w", id, models.ErrItemNotFound)
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to read item %s: %w", id, err)
	}

	updated := patch.Apply(item)
	if err := updated.Validate(); err != nil {
		return models.Item{}, err
	}
	updated.UpdatedAt = s.now().UTC()

	_, err = tx.ExecContext(ctx, `
UPDATE items SET status = $1, due_at = $2, start_at = $3, end_at = $4, responsible_user_id = $5, updated_at = $6
WHERE id = $7`,
		string(updated.Status), nullTime(updated.DueAt), nullTime(updated.StartAt), nullTime(updated.EndAt),
		updated.ResponsibleUserID, updated.UpdatedAt, id,
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("failed to update item %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return models.Item{}, fmt.Errorf("failed to commit item update: %w", err)
	}
	return updated, nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", id, models.ErrItemNotFound)
	}
	return nil
}
