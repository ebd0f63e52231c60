// Package memory is an in-process document store.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/neetwise/listing/internal/datasource"
)

// Store keeps documents in memory. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	order       map[string][]string
	hub         datasource.Hub
	userID      string
}

var _ datasource.Source = (*Store)(nil)

// New creates an empty store acting on behalf of userID. An empty userID
// means nobody is signed in.
func New(userID string) *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		order:       make(map[string][]string),
		userID:      userID,
	}
}

func (s *Store) QueryPage(ctx context.Context, collection string, q datasource.Query) (*datasource.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	records := make([]datasource.Record, 0, len(s.order[collection]))
	for _, id := range s.order[collection] {
		records = append(records, datasource.Record{DocID: id, Data: maps.Clone(s.collections[collection][id])})
	}
	s.mu.RUnlock()

	if q.FilterField != "" {
		matched := make([]datasource.Record, 0, q.Limit)
		for _, r := range records {
			if len(matched) == q.Limit {
				break
			}
			if datasource.CompareValues(r.Data[q.FilterField], q.FilterValue) == 0 {
				matched = append(matched, r)
			}
		}
		return &datasource.Page{Items: matched}, nil
	}

	ordered := make([]datasource.Record, 0, len(records))
	for _, r := range records {
		if v, ok := r.Data[q.OrderBy]; !ok || v == nil {
			continue
		}
		if q.Cursor != nil && !q.Cursor.After(r, q.OrderBy) {
			continue
		}
		ordered = append(ordered, r)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if cmp := datasource.CompareValues(ordered[i].Data[q.OrderBy], ordered[j].Data[q.OrderBy]); cmp != 0 {
			return cmp < 0
		}
		return ordered[i].DocID < ordered[j].DocID
	})

	if len(ordered) > q.Limit {
		ordered = ordered[:q.Limit]
	}

	page := &datasource.Page{Items: ordered}
	if len(ordered) > 0 {
		page.Last = datasource.CursorOf(ordered[len(ordered)-1], q.OrderBy)
	}

	return page, nil
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*datasource.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}

	return &datasource.Record{DocID: id, Data: maps.Clone(data)}, nil
}

// SetDocument creates or replaces a document. An empty id generates one.
// Subscribers are notified of creations only.
func (s *Store) SetDocument(ctx context.Context, collection, id string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	_, exists := s.collections[collection][id]
	s.collections[collection][id] = maps.Clone(data)
	if !exists {
		s.order[collection] = append(s.order[collection], id)
	}
	s.mu.Unlock()

	if !exists {
		s.hub.Publish(collection, datasource.Record{DocID: id, Data: maps.Clone(data)})
	}

	return nil
}

func (s *Store) Subscribe(_ context.Context, collection string, _ datasource.SubscribeOptions, onAdded func(datasource.Record)) (datasource.Unsubscribe, error) {
	return s.hub.Subscribe(collection, onAdded), nil
}

func (s *Store) CurrentUserID() (string, bool) {
	return s.userID, s.userID != ""
}

// Subscribers returns the number of active subscriptions on collection.
func (s *Store) Subscribers(collection string) int {
	return s.hub.Subscribers(collection)
}
