package sqlite

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
	var itemType, status, visibility string
	var dueAt, startAt, endAt, rule, anchor sql.NullString
	var zone, createdAt, updatedAt string

	err := row.Scan(
		&item.ID, &itemType, &item.Title, &item.Description, &dueAt, &startAt, &endAt, &rule, &anchor,
		&zone, &status, &item.ResponsibleUserID, &item.CreatedBy, &visibility, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.Item{}, err
	}

	item.Type = models.ItemType(itemType)
	item.Status = models.ItemStatus(status)
	item.Visibility = models.Visibility(visibility)

	if item.DueAt, err = parseNullTime(dueAt); err != nil {
		return models.Item{}, err
	}
	if item.StartAt, err = parseNullTime(startAt); err != nil {
		return models.Item{}, err
	}
	if item.EndAt, err = parseNullTime(endAt); err != nil {
		return models.Item{}, err
	}
	if rule.Valid && rule.String != "" {
		a, err := parseNullTime(anchor)
		if err != nil {
			return models.Item{}, err
		}
		item.Recurrence = &models.Recurrence{Rule: rule.String, Zone: zone}
		if a != nil {
			item.Recurrence.Anchor = *a
		}
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Item{}, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Item{}, err
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

	var rule, anchor sql.NullString
	var zone string
	if item.Recurrence != nil && item.Recurrence.Rule != "" {
		rule = sql.NullString{String: item.Recurrence.Rule, Valid: true}
		anchor = formatNullTime(&item.Recurrence.Anchor)
		zone = item.Recurrence.Zone
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO items (`+itemColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, string(item.Type), item.Title, item.Description,
		formatNullTime(item.DueAt), formatNullTime(item.StartAt), formatNullTime(item.EndAt), rule, anchor,
		zone, string(item.Status), item.ResponsibleUserID, item.CreatedBy, string(item.Visibility),
		formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, id string) (models.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
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
	if !filter.IncludeArchived {
		where = append(where, "status <> ?")
		args = append(args, string(models.ItemStatusArchived))
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.ResponsibleUserID != "" {
		where = append(where, "responsible_user_id = ?")
		args = append(args, filter.ResponsibleUserID)
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

	item, err := scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
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
UPDATE items SET status = ?, due_at = ?, start_at = ?, end_at = ?, responsible_user_id = ?, updated_at = ?
WHERE id = ?`,
		string(updated.Status), formatNullTime(updated.DueAt), formatNullTime(updated.StartAt), formatNullTime(updated.EndAt),
		updated.ResponsibleUserID, formatTime(updated.UpdatedAt), id,
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
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
