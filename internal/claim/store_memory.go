package claim

import (
	"context"
	"sync"

	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

// InMemoryStore keeps claims in a mutex-guarded map. Insertion order is
// preserved so profile listings replay in submission order.
type InMemoryStore struct {
	mu     sync.RWMutex
	claims map[domain.ClaimID]ImpactClaim
	order  []domain.ClaimID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{claims: make(map[domain.ClaimID]ImpactClaim)}
}

func (s *InMemoryStore) Create(ctx context.Context, c ImpactClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.claims[c.ID]; exists {
		return sentinel.ErrConflict
	}
	s.claims[c.ID] = c
	s.order = append(s.order, c.ID)
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, id domain.ClaimID) (ImpactClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.claims[id]
	if !ok {
		return ImpactClaim{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (s *InMemoryStore) ListByProfile(ctx context.Context, profile domain.ProfileRef) ([]ImpactClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ImpactClaim
	for _, id := range s.order {
		if c := s.claims[id]; c.ProfileRef == profile {
			out = append(out, c)
		}
	}
	return out, nil
}

// MarkVerified is a check-and-set under the write lock: the first caller to
// observe verified=false wins the transition.
func (s *InMemoryStore) MarkVerified(ctx context.Context, id domain.ClaimID, validator domain.Identity, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.claims[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if c.Verified {
		return sentinel.ErrInvalidState
	}

	c.Verified = true
	c.Validator = validator
	c.ConfidenceScore = score
	s.claims[id] = c
	return nil
}
