package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

type moduleRepo struct{ pool *pgxpool.Pool }

func (r *moduleRepo) List(ctx context.Context) ([]repository.Module, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, slug, name, api_base, description FROM hub_module ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("pg: list modules: %w", err)
	}
	defer rows.Close()

	var out []repository.Module
	for rows.Next() {
		var m repository.Module
		if err := rows.Scan(&m.ID, &m.Slug, &m.Name, &m.APIBase, &m.Description); err != nil {
			return nil, fmt.Errorf("pg: scan module: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *moduleRepo) get(ctx context.Context, where string, arg string) (*repository.Module, error) {
	var m repository.Module
	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, name, api_base, description FROM hub_module WHERE `+where+` = $1`, arg,
	).Scan(&m.ID, &m.Slug, &m.Name, &m.APIBase, &m.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get module: %w", err)
	}
	return &m, nil
}

func (r *moduleRepo) GetByID(ctx context.Context, id string) (*repository.Module, error) {
	return r.get(ctx, "id", id)
}

func (r *moduleRepo) GetBySlug(ctx context.Context, slug string) (*repository.Module, error) {
	return r.get(ctx, "slug", slug)
}

func (r *moduleRepo) Upsert(ctx context.Context, m *repository.Module) error {
	if m == nil || !repository.ValidSlug(m.Slug) {
		return repository.ErrInvalidInput
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO hub_module (id, slug, name, api_base, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name, api_base = EXCLUDED.api_base, description = EXCLUDED.description
		RETURNING id`,
		m.ID, m.Slug, m.Name, m.APIBase, m.Description,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("pg: upsert module: %w", err)
	}
	return nil
}
