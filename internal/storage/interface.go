package storage

import (
	"context"

	"github.com/elioaoun07/homeagenda/internal/models"
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Items
	AddItem(ctx context.Context, item models.Item) error
	GetItem(ctx context.Context, id string) (models.Item, error)
	ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	UpdateItem(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error)
	DeleteItem(ctx context.Context, id string) error

	// Occurrence ledger. Entries are returned in creation order: created_at, then seq.
	AppendAction(ctx context.Context, action models.OccurrenceAction) (models.OccurrenceAction, error)
	ListActionsForItem(ctx context.Context, itemID string) ([]models.OccurrenceAction, error)
	ListAllActions(ctx context.Context) ([]models.OccurrenceAction, error)
	DeleteActionsForItem(ctx context.Context, itemID string) error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by providers with a versioned schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
}
