package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

type moduleRepo struct {
	mu     sync.RWMutex
	bySlug map[string]repository.Module

	onChange func()
}

func newModuleRepo() *moduleRepo {
	return &moduleRepo{bySlug: make(map[string]repository.Module)}
}

func (r *moduleRepo) List(ctx context.Context) ([]repository.Module, error) {
	r.mu.RLock()
	out := make([]repository.Module, 0, len(r.bySlug))
	for _, m := range r.bySlug {
		out = append(out, m)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *moduleRepo) GetByID(ctx context.Context, id string) (*repository.Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.bySlug {
		if m.ID == id {
			mm := m
			return &mm, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *moduleRepo) GetBySlug(ctx context.Context, slug string) (*repository.Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.bySlug[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *moduleRepo) Upsert(ctx context.Context, m *repository.Module) error {
	if m == nil || !repository.ValidSlug(m.Slug) {
		return repository.ErrInvalidInput
	}
	r.mu.Lock()
	if prev, ok := r.bySlug[m.Slug]; ok {
		m.ID = prev.ID
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.bySlug[m.Slug] = *m
	r.mu.Unlock()

	if r.onChange != nil {
		r.onChange()
	}
	return nil
}
