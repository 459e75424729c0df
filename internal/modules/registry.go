// Package modules define el registro estático slug -> handler set de los
// módulos de API que el Hub puede montar.
//
// El registro se arma una vez al arrancar y no cambia; lo único dinámico es
// el chequeo de suscripción que hace el router en cada request.
package modules

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-chi/chi/v5"
)

// HandlerSet es un módulo montable bajo su apiBase.
type HandlerSet interface {
	Slug() string
	Routes(r chi.Router)
}

// Provisioner es opcional: se invoca antes de confirmar una compra.
// Debe ser idempotente (un reprovision vuelve a llamarlo).
type Provisioner interface {
	Provision(ctx context.Context, tenantID string) error
}

// Registry es inmutable tras NewRegistry.
type Registry struct {
	sets map[string]HandlerSet
}

// NewRegistry falla si dos handler sets declaran el mismo slug.
func NewRegistry(sets ...HandlerSet) (*Registry, error) {
	r := &Registry{sets: make(map[string]HandlerSet, len(sets))}
	for _, s := range sets {
		if _, dup := r.sets[s.Slug()]; dup {
			return nil, fmt.Errorf("modules: duplicate handler set %q", s.Slug())
		}
		r.sets[s.Slug()] = s
	}
	return r, nil
}

func (r *Registry) Get(slug string) (HandlerSet, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.sets[slug]
	return s, ok
}

// Slugs devuelve los slugs registrados, ordenados.
func (r *Registry) Slugs() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.sets))
	for s := range r.sets {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Provision llama al Provisioner del módulo si existe; módulos sin handler set
// o sin hook no requieren provisioning.
func (r *Registry) Provision(ctx context.Context, slug, tenantID string) error {
	s, ok := r.Get(slug)
	if !ok {
		return nil
	}
	p, ok := s.(Provisioner)
	if !ok {
		return nil
	}
	if err := p.Provision(ctx, tenantID); err != nil {
		return fmt.Errorf("modules: provision %s for %s: %w", slug, tenantID, err)
	}
	return nil
}
