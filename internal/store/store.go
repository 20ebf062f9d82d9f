package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cashflow-forecast/internal/model"
)

// PlanStore persists the latest plan per country.
type PlanStore interface {
	Save(ctx context.Context, plan *model.ProjectionPlan) error
	// Load returns nil, nil when no plan is stored for country.
	Load(ctx context.Context, country model.Country) (*model.ProjectionPlan, error)
}

// Key is the storage key for a country's plan.
func Key(country model.Country) string {
	return "projection_plan_" + string(country)
}

func encode(plan *model.ProjectionPlan) ([]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is nil")
	}
	if plan.Country == "" {
		return nil, fmt.Errorf("plan %s has no country", plan.ID)
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("encode plan %s: %w", plan.ID, err)
	}
	return raw, nil
}

func decode(raw []byte) (*model.ProjectionPlan, error) {
	var p model.ProjectionPlan
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

// MemoryStore keeps serialized plans in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: map[string][]byte{}}
}

func (s *MemoryStore) Save(_ context.Context, plan *model.ProjectionPlan) error {
	raw, err := encode(plan)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[Key(plan.Country)] = raw
	return nil
}

func (s *MemoryStore) Load(_ context.Context, country model.Country) (*model.ProjectionPlan, error) {
	s.mu.RLock()
	raw, ok := s.plans[Key(country)]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decode(raw)
}
