// internal/activities/memory_store.go
package activities

import (
	"context"
	"fmt"
	"sync"

	"mergington-activities/internal/models"
)

// MemoryStore keeps state for the lifetime of the process.
type MemoryStore struct {
	mu         sync.RWMutex
	order      []string
	activities map[string]*models.Activity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{activities: make(map[string]*models.Activity)}
}

func (s *MemoryStore) Seed(_ context.Context, catalog models.Catalog) error {
	order := make([]string, 0, len(catalog))
	activities := make(map[string]*models.Activity, len(catalog))
	for _, a := range catalog {
		if _, dup := activities[a.Name]; dup {
			return fmt.Errorf("seed: duplicate activity %q", a.Name)
		}
		clone := a.Clone()
		activities[a.Name] = &clone
		order = append(order, a.Name)
	}

	s.mu.Lock()
	s.order = order
	s.activities = activities
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) (models.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(models.Catalog, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.activities[name].Clone())
	}
	return out, nil
}

func (s *MemoryStore) AppendParticipant(_ context.Context, activityName, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[activityName]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrActivityNotFound, activityName)
	}
	a.Participants = append(a.Participants, email)
	return len(a.Participants), nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
