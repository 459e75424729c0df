// Package catalog carga y resuelve el catálogo de módulos del Marketplace.
//
// El catálogo es read-mostly: se siembra al arrancar el Hub (YAML o default embebido)
// y las lecturas pasan por un cache go-cache con singleflight para evitar
// cargas duplicadas. Las suscripciones de tenants nunca se cachean acá.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

//go:embed default.yaml
var defaultYAML []byte

const DefaultTTL = 5 * time.Minute

type file struct {
	Modules []repository.Module `yaml:"modules"`
}

// Load lee el catálogo de path; path vacío usa el catálogo embebido.
func Load(path string) ([]repository.Module, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultYAML)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodifica y valida un catálogo YAML.
func Parse(b []byte) ([]repository.Module, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Modules))
	bases := make(map[string]string, len(f.Modules))
	for i := range f.Modules {
		m := &f.Modules[i]
		m.Slug = strings.TrimSpace(m.Slug)
		m.APIBase = "/" + strings.Trim(strings.TrimSpace(m.APIBase), "/")
		if !repository.ValidSlug(m.Slug) {
			return nil, fmt.Errorf("catalog: module %d: invalid slug %q", i, m.Slug)
		}
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("catalog: module %s: name required", m.Slug)
		}
		if m.APIBase == "/" {
			return nil, fmt.Errorf("catalog: module %s: api_base required", m.Slug)
		}
		if _, dup := seen[m.Slug]; dup {
			return nil, fmt.Errorf("catalog: duplicate module slug %q", m.Slug)
		}
		if other, dup := bases[m.APIBase]; dup {
			return nil, fmt.Errorf("catalog: api_base %s used by %s and %s", m.APIBase, other, m.Slug)
		}
		seen[m.Slug] = struct{}{}
		bases[m.APIBase] = m.Slug
	}
	return f.Modules, nil
}

// Seed hace upsert de mods en repo.
func Seed(ctx context.Context, repo repository.ModuleRepository, mods []repository.Module) error {
	for i := range mods {
		m := mods[i]
		if err := repo.Upsert(ctx, &m); err != nil {
			return fmt.Errorf("catalog: seed %s: %w", m.Slug, err)
		}
	}
	logger.L().Info("module catalog seeded", logger.Component("catalog"), logger.Count(len(mods)))
	return nil
}

// Catalog resuelve productIds (id o slug) contra el ModuleRepository.
type Catalog struct {
	repo  repository.ModuleRepository
	cache *gocache.Cache
	sf    singleflight.Group
}

// New crea un Catalog. ttl <= 0 usa DefaultTTL.
func New(repo repository.ModuleRepository, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{repo: repo, cache: gocache.New(ttl, 2*ttl)}
}

// Resolve busca un módulo por id o slug. Devuelve repository.ErrNotFound si no existe.
func (c *Catalog) Resolve(ctx context.Context, productID string) (*repository.Module, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, repository.ErrNotFound
	}
	key := "p:" + productID
	if v, ok := c.cache.Get(key); ok {
		m := v.(repository.Module)
		return &m, nil
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		m, err := c.repo.GetByID(ctx, productID)
		if repository.IsNotFound(err) {
			m, err = c.repo.GetBySlug(ctx, productID)
		}
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, *m)
		return *m, nil
	})
	if err != nil {
		return nil, err
	}
	m := v.(repository.Module)
	return &m, nil
}

// List devuelve el catálogo completo.
func (c *Catalog) List(ctx context.Context) ([]repository.Module, error) {
	const key = "list"
	if v, ok := c.cache.Get(key); ok {
		return append([]repository.Module{}, v.([]repository.Module)...), nil
	}
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		mods, err := c.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, mods)
		return mods, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]repository.Module{}, v.([]repository.Module)...), nil
}

// Invalidate vacía el cache (p.ej. tras re-sembrar).
func (c *Catalog) Invalidate() { c.cache.Flush() }
