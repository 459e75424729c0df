package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

const tenantColumns = `id, slug, name, subscribed_modules, last_heartbeat, created_at, updated_at`

type tenantRepo struct{ pool *pgxpool.Pool }

func scanTenant(row pgx.Row) (*repository.Tenant, error) {
	var (
		t  repository.Tenant
		hb []byte
	)
	if err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.SubscribedModules, &hb, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if len(hb) > 0 {
		var h repository.Heartbeat
		if err := json.Unmarshal(hb, &h); err != nil {
			return nil, fmt.Errorf("pg: decode last_heartbeat: %w", err)
		}
		t.LastHeartbeat = &h
	}
	t.SubscribedModules = repository.NormalizeModules(t.SubscribedModules)
	return &t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *tenantRepo) List(ctx context.Context) ([]repository.Tenant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tenantColumns+` FROM hub_tenant ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("pg: list tenants: %w", err)
	}
	defer rows.Close()

	var out []repository.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("pg: scan tenant: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	t, err := scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM hub_tenant WHERE id = $1`, id))
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("pg: get tenant: %w", err)
	}
	return t, err
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*repository.Tenant, error) {
	t, err := scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM hub_tenant WHERE slug = $1`, slug))
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("pg: get tenant by slug: %w", err)
	}
	return t, err
}

func (r *tenantRepo) Create(ctx context.Context, t *repository.Tenant) error {
	if t == nil || !repository.ValidSlug(t.Slug) {
		return repository.ErrInvalidInput
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.SubscribedModules = repository.NormalizeModules(t.SubscribedModules)

	err := r.pool.QueryRow(ctx, `
		INSERT INTO hub_tenant (id, slug, name, subscribed_modules)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		t.ID, t.Slug, t.Name, t.SubscribedModules,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("pg: create tenant: %w", err)
	}
	return nil
}

func (r *tenantRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM hub_tenant WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pg: delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateSubscriptions toma el row lock (FOR UPDATE) para que check + write sean atómicos.
func (r *tenantRepo) UpdateSubscriptions(ctx context.Context, id string, fn repository.SubscriptionMutator) (*repository.Tenant, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("pg: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current []string
	err = tx.QueryRow(ctx, `SELECT subscribed_modules FROM hub_tenant WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: lock tenant: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	t, err := scanTenant(tx.QueryRow(ctx, `
		UPDATE hub_tenant SET subscribed_modules = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+tenantColumns,
		id, repository.NormalizeModules(next),
	))
	if err != nil {
		return nil, fmt.Errorf("pg: update subscriptions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("pg: commit: %w", err)
	}
	return t, nil
}

// RecordHeartbeat es un único UPDATE … RETURNING: espera cualquier FOR UPDATE en curso
// sobre el mismo row y devuelve el set de módulos ya confirmado.
func (r *tenantRepo) RecordHeartbeat(ctx context.Context, id string, hb repository.Heartbeat) (*repository.Tenant, error) {
	b, err := json.Marshal(hb)
	if err != nil {
		return nil, err
	}
	t, err := scanTenant(r.pool.QueryRow(ctx, `
		UPDATE hub_tenant SET last_heartbeat = $2
		WHERE id = $1
		RETURNING `+tenantColumns,
		id, b,
	))
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("pg: record heartbeat: %w", err)
	}
	return t, err
}
