package repository

import "context"

// Module es una entrada del catálogo del Marketplace.
type Module struct {
	ID          string `json:"id" yaml:"id"`
	Slug        string `json:"slug" yaml:"slug"`
	Name        string `json:"name" yaml:"name"`
	APIBase     string `json:"apiBase" yaml:"api_base"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// ModuleRepository define operaciones sobre el catálogo de módulos.
// El catálogo es read-mostly y no pertenece a ningún tenant.
type ModuleRepository interface {
	// List retorna el catálogo completo ordenado por slug.
	List(ctx context.Context) ([]Module, error)

	// GetByID busca un módulo por su ID.
	GetByID(ctx context.Context, id string) (*Module, error)

	// GetBySlug busca un módulo por su slug.
	GetBySlug(ctx context.Context, slug string) (*Module, error)

	// Upsert crea o actualiza un módulo (clave: slug).
	Upsert(ctx context.Context, m *Module) error
}
