package repository

import (
	"context"
	"regexp"
	"sort"
	"time"
)

// Tenant representa un cliente aislado con su propio set de módulos.
type Tenant struct {
	ID                string     `json:"id"`
	Slug              string     `json:"slug"`
	Name              string     `json:"name"`
	SubscribedModules []string   `json:"subscribedModules"`
	LastHeartbeat     *Heartbeat `json:"lastHeartbeat,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Heartbeat es el último reporte de un Silo.
type Heartbeat struct {
	Timestamp time.Time        `json:"timestamp"`
	Metrics   HeartbeatMetrics `json:"metrics"`
}

// HeartbeatMetrics son las métricas reportadas por un Silo.
// Solo se retiene el último reporte por tenant.
type HeartbeatMetrics struct {
	CPU           float64 `json:"cpu"`
	RAMUsedMB     float64 `json:"ramUsedMb"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	Version       string  `json:"version"`
}

// HasModule reports whether slug is in the tenant's subscribed set.
func (t *Tenant) HasModule(slug string) bool {
	for _, m := range t.SubscribedModules {
		if m == slug {
			return true
		}
	}
	return false
}

// Clone devuelve una copia profunda; los adapters nunca exponen su estado interno.
func (t *Tenant) Clone() *Tenant {
	if t == nil {
		return nil
	}
	out := *t
	out.SubscribedModules = append([]string{}, t.SubscribedModules...)
	if t.LastHeartbeat != nil {
		hb := *t.LastHeartbeat
		out.LastHeartbeat = &hb
	}
	return &out
}

// NormalizeModules deduplica y ordena un set de slugs.
func NormalizeModules(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Slug rules: lowercase alnum plus '-', starts with alnum, 1..63 chars.
var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// ValidSlug returns true if s is a valid tenant or module slug.
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

// SubscriptionMutator recibe el set actual y devuelve el nuevo set.
// Si devuelve error la mutación se aborta y el set queda intacto.
type SubscriptionMutator func(current []string) ([]string, error)

// TenantRepository define operaciones sobre el registro de tenants.
//
// UpdateSubscriptions y RecordHeartbeat deben ser atómicas por tenant:
// un lector concurrente observa el estado previo o el posterior, nunca uno intermedio.
// Ninguna implementación puede bloquear tenants no relacionados entre sí.
type TenantRepository interface {
	// List retorna todos los tenants (copias).
	List(ctx context.Context) ([]Tenant, error)

	// GetByID busca un tenant por su ID.
	GetByID(ctx context.Context, id string) (*Tenant, error)

	// GetBySlug busca un tenant por su slug.
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)

	// Create crea un nuevo tenant. Retorna ErrConflict si el slug ya existe.
	Create(ctx context.Context, tenant *Tenant) error

	// Delete elimina un tenant. Seguro frente a heartbeats en vuelo.
	Delete(ctx context.Context, id string) error

	// UpdateSubscriptions aplica fn sobre subscribedModules de forma atómica.
	UpdateSubscriptions(ctx context.Context, id string, fn SubscriptionMutator) (*Tenant, error)

	// RecordHeartbeat reemplaza lastHeartbeat y devuelve el tenant resultante.
	RecordHeartbeat(ctx context.Context, id string, hb Heartbeat) (*Tenant, error)
}

// LookupTenant busca por ID y, si no existe, por slug.
func LookupTenant(ctx context.Context, repo TenantRepository, idOrSlug string) (*Tenant, error) {
	t, err := repo.GetByID(ctx, idOrSlug)
	if IsNotFound(err) && ValidSlug(idOrSlug) {
		return repo.GetBySlug(ctx, idOrSlug)
	}
	return t, err
}
