package access

import (
	"context"
	"sync"

	"canopy/pkg/domain"
)

// InMemoryStore keeps role membership in process. Grants are idempotent by
// construction (set semantics).
type InMemoryStore struct {
	mu      sync.RWMutex
	members map[Role]map[domain.Identity]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{members: make(map[Role]map[domain.Identity]struct{})}
}

func (s *InMemoryStore) Grant(_ context.Context, role Role, identity domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[role] == nil {
		s.members[role] = make(map[domain.Identity]struct{})
	}
	s.members[role][identity] = struct{}{}
	return nil
}

func (s *InMemoryStore) IsMember(_ context.Context, role Role, identity domain.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[role][identity]
	return ok, nil
}
