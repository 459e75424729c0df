package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

type tenantEntry struct {
	mu      sync.Mutex
	tenant  *repository.Tenant
	deleted bool
}

type tenantRepo struct {
	mu     sync.RWMutex
	byID   map[string]*tenantEntry
	bySlug map[string]string

	now      func() time.Time
	onChange func()
}

func newTenantRepo(now func() time.Time) *tenantRepo {
	return &tenantRepo{
		byID:   make(map[string]*tenantEntry),
		bySlug: make(map[string]string),
		now:    now,
	}
}

func (r *tenantRepo) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}

func (r *tenantRepo) entry(id string) (*tenantEntry, error) {
	r.mu.RLock()
	e, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

// insert sin validaciones, usado al restaurar un snapshot.
func (r *tenantRepo) insert(t *repository.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := t.Clone()
	c.SubscribedModules = repository.NormalizeModules(c.SubscribedModules)
	r.byID[c.ID] = &tenantEntry{tenant: c}
	r.bySlug[c.Slug] = c.ID
}

func (r *tenantRepo) List(ctx context.Context) ([]repository.Tenant, error) {
	r.mu.RLock()
	entries := make([]*tenantEntry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]repository.Tenant, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.mu.Lock()
		if !e.deleted {
			out = append(out, *e.tenant.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, repository.ErrNotFound
	}
	return e.tenant.Clone(), nil
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*repository.Tenant, error) {
	r.mu.RLock()
	id, ok := r.bySlug[strings.ToLower(slug)]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *tenantRepo) Create(ctx context.Context, t *repository.Tenant) error {
	if t == nil || !repository.ValidSlug(t.Slug) {
		return repository.ErrInvalidInput
	}

	r.mu.Lock()
	if _, exists := r.bySlug[t.Slug]; exists {
		r.mu.Unlock()
		return repository.ErrConflict
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, exists := r.byID[t.ID]; exists {
		r.mu.Unlock()
		return repository.ErrConflict
	}
	now := r.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	t.SubscribedModules = repository.NormalizeModules(t.SubscribedModules)

	r.byID[t.ID] = &tenantEntry{tenant: t.Clone()}
	r.bySlug[t.Slug] = t.ID
	r.mu.Unlock()

	r.changed()
	return nil
}

func (r *tenantRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.bySlug, e.tenant.Slug)
	r.mu.Unlock()

	// Un heartbeat que ya tomó la entrada antes del delete ve deleted=true y falla NotFound.
	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()

	r.changed()
	return nil
}

func (r *tenantRepo) UpdateSubscriptions(ctx context.Context, id string, fn repository.SubscriptionMutator) (*repository.Tenant, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	next, err := fn(append([]string{}, e.tenant.SubscribedModules...))
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.tenant.SubscribedModules = repository.NormalizeModules(next)
	e.tenant.UpdatedAt = r.now().UTC()
	out := e.tenant.Clone()
	e.mu.Unlock()

	r.changed()
	return out, nil
}

func (r *tenantRepo) RecordHeartbeat(ctx context.Context, id string, hb repository.Heartbeat) (*repository.Tenant, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	e.tenant.LastHeartbeat = &hb
	out := e.tenant.Clone()
	e.mu.Unlock()

	r.changed()
	return out, nil
}
