package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/elioaoun07/homeagenda/internal/constants"
	"github.com/elioaoun07/homeagenda/internal/models"
)

// MemoryStore is a process-local Provider used for tests and for --config :memory:.
type MemoryStore struct {
	mu       sync.Mutex
	items    map[string]models.Item
	actions  []models.OccurrenceAction
	seq      int64
	settings map[string]string
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:    make(map[string]models.Item),
		settings: models.DefaultSettings().ToMap(),
		now:      time.Now,
	}
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Load() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetConfigPath() string {
	return constants.MemoryConfigPath
}

func (s *MemoryStore) GetSettings(ctx context.Context) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SettingsFromMap(s.settings), nil
}

func (s *MemoryStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range settings.ToMap() {
		s.settings[k] = v
	}
	return nil
}

func (s *MemoryStore) AddItem(ctx context.Context, item models.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; exists {
		return fmt.Errorf("item %s already exists", item.ID)
	}
	now := s.now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	s.items[item.ID] = cloneItem(item)
	return nil
}

func (s *MemoryStore) GetItem(ctx context.Context, id string) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return models.Item{}, fmt.Errorf("item %s: %w", id, models.ErrItemNotFound)
	}
	return cloneItem(item), nil
}

func (s *MemoryStore) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Item
	for _, item := range s.items {
		if filter.Matches(item) {
			out = append(out, cloneItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpdateItem(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return models.Item{}, fmt.Errorf("item %s: %w", id, models.ErrItemNotFound)
	}
	updated := patch.Apply(cloneItem(item))
	if err := updated.Validate(); err != nil {
		return models.Item{}, err
	}
	updated.UpdatedAt = s.now().UTC()
	s.items[id] = updated
	return cloneItem(updated), nil
}

func (s *MemoryStore) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("item %s: %w", id, models.ErrItemNotFound)
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) AppendAction(ctx context.Context, action models.OccurrenceAction) (models.OccurrenceAction, error) {
	if err := action.Validate(); err != nil {
		return models.OccurrenceAction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	action.Seq = s.seq
	action.OccurrenceAt = models.NormalizeInstant(action.OccurrenceAt)
	s.actions = append(s.actions, action)
	return action, nil
}

func (s *MemoryStore) ListActionsForItem(ctx context.Context, itemID string) ([]models.OccurrenceAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.OccurrenceAction
	for _, a := range s.actions {
		if a.ItemID == itemID {
			out = append(out, a)
		}
	}
	sortActions(out)
	return out, nil
}

func (s *MemoryStore) ListAllActions(ctx context.Context) ([]models.OccurrenceAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OccurrenceAction, len(s.actions))
	copy(out, s.actions)
	sortActions(out)
	return out, nil
}

func (s *MemoryStore) DeleteActionsForItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.actions[:0]
	for _, a := range s.actions {
		if a.ItemID != itemID {
			kept = append(kept, a)
		}
	}
	s.actions = kept
	return nil
}

func sortActions(actions []models.OccurrenceAction) {
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].CreatedAt.Equal(actions[j].CreatedAt) {
			return actions[i].Seq < actions[j].Seq
		}
		return actions[i].CreatedAt.Before(actions[j].CreatedAt)
	})
}

func cloneItem(item models.Item) models.Item {
	if item.DueAt != nil {
		t := *item.DueAt
		item.DueAt = &t
	}
	if item.StartAt != nil {
		t := *item.StartAt
		item.StartAt = &t
	}
	if item.EndAt != nil {
		t := *item.EndAt
		item.EndAt = &t
	}
	if item.Recurrence != nil {
		r := *item.Recurrence
		item.Recurrence = &r
	}
	return item
}
