package policy

import (
	"context"
	"sync"

	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
	pstrings "canopy/pkg/platform/strings"
)

// InMemoryStore keeps policies in process. Reads return copies, so callers
// can never mutate the stored record in place.
type InMemoryStore struct {
	mu       sync.RWMutex
	policies map[domain.Category]ValidationPolicy
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{policies: make(map[domain.Category]ValidationPolicy)}
}

func (s *InMemoryStore) Get(_ context.Context, category domain.Category) (ValidationPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[category]
	if !ok {
		return ValidationPolicy{}, sentinel.ErrNotFound
	}
	return copyPolicy(p), nil
}

func (s *InMemoryStore) Put(_ context.Context, policy ValidationPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policy.Category] = copyPolicy(policy)
	return nil
}

func (s *InMemoryStore) AddUnit(_ context.Context, category domain.Category, unit domain.Unit) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[category]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	units, added := pstrings.AppendUnique(p.AllowedUnits, string(unit))
	p.AllowedUnits = units
	s.policies[category] = p
	return added, nil
}

func (s *InMemoryStore) AddMethodology(_ context.Context, category domain.Category, methodology domain.Methodology) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[category]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	methodologies, added := pstrings.AppendUnique(p.AllowedMethodologies, string(methodology))
	p.AllowedMethodologies = methodologies
	s.policies[category] = p
	return added, nil
}

func copyPolicy(p ValidationPolicy) ValidationPolicy {
	p.RequiredEvidence = append([]string(nil), p.RequiredEvidence...)
	p.AllowedUnits = append([]string(nil), p.AllowedUnits...)
	p.AllowedMethodologies = append([]string(nil), p.AllowedMethodologies...)
	return p
}
