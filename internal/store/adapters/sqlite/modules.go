package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

type moduleRepo struct{ db *sqlx.DB }

type moduleRow struct {
	ID          string `db:"id"`
	Slug        string `db:"slug"`
	Name        string `db:"name"`
	APIBase     string `db:"api_base"`
	Description string `db:"description"`
}

func (m moduleRow) toDomain() repository.Module {
	return repository.Module{ID: m.ID, Slug: m.Slug, Name: m.Name, APIBase: m.APIBase, Description: m.Description}
}

func (r *moduleRepo) List(ctx context.Context) ([]repository.Module, error) {
	var rows []moduleRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, slug, name, api_base, description FROM hub_module ORDER BY slug`); err != nil {
		return nil, fmt.Errorf("sqlite: list modules: %w", err)
	}
	out := make([]repository.Module, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *moduleRepo) get(ctx context.Context, where, arg string) (*repository.Module, error) {
	var row moduleRow
	err := r.db.GetContext(ctx, &row, `SELECT id, slug, name, api_base, description FROM hub_module WHERE `+where+` = ?`, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get module: %w", err)
	}
	m := row.toDomain()
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
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO hub_module (id, slug, name, api_base, description)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE
		SET name = excluded.name, api_base = excluded.api_base, description = excluded.description
		RETURNING id`,
		m.ID, m.Slug, m.Name, m.APIBase, m.Description,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("sqlite: upsert module: %w", err)
	}
	return nil
}
