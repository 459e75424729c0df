package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
)

const tenantColumns = `id, slug, name, subscribed_modules, last_heartbeat, created_at, updated_at`

// tenantRow es la forma persistida; los sets y heartbeats viajan como JSON.
type tenantRow struct {
	ID                string         `db:"id"`
	Slug              string         `db:"slug"`
	Name              string         `db:"name"`
	SubscribedModules string         `db:"subscribed_modules"`
	LastHeartbeat     sql.NullString `db:"last_heartbeat"`
	CreatedAt         string         `db:"created_at"`
	UpdatedAt         string         `db:"updated_at"`
}

func (r tenantRow) toDomain() (*repository.Tenant, error) {
	t := &repository.Tenant{ID: r.ID, Slug: r.Slug, Name: r.Name}
	if err := json.Unmarshal([]byte(r.SubscribedModules), &t.SubscribedModules); err != nil {
		return nil, fmt.Errorf("sqlite: decode subscribed_modules: %w", err)
	}
	t.SubscribedModules = repository.NormalizeModules(t.SubscribedModules)
	if r.LastHeartbeat.Valid && r.LastHeartbeat.String != "" {
		var hb repository.Heartbeat
		if err := json.Unmarshal([]byte(r.LastHeartbeat.String), &hb); err != nil {
			return nil, fmt.Errorf("sqlite: decode last_heartbeat: %w", err)
		}
		t.LastHeartbeat = &hb
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return t, nil
}

func encodeModules(mods []string) string {
	b, _ := json.Marshal(repository.NormalizeModules(mods))
	return string(b)
}

func nowText() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

type tenantRepo struct{ db *sqlx.DB }

func (r *tenantRepo) List(ctx context.Context) ([]repository.Tenant, error) {
	var rows []tenantRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+tenantColumns+` FROM hub_tenant ORDER BY slug`); err != nil {
		return nil, fmt.Errorf("sqlite: list tenants: %w", err)
	}
	out := make([]repository.Tenant, 0, len(rows))
	for _, row := range rows {
		t, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *tenantRepo) get(ctx context.Context, q sqlx.QueryerContext, where, arg string) (*repository.Tenant, error) {
	var row tenantRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT `+tenantColumns+` FROM hub_tenant WHERE `+where+` = ?`, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get tenant: %w", err)
	}
	return row.toDomain()
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	return r.get(ctx, r.db, "id", id)
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*repository.Tenant, error) {
	return r.get(ctx, r.db, "slug", slug)
}

func (r *tenantRepo) Create(ctx context.Context, t *repository.Tenant) error {
	if t == nil || !repository.ValidSlug(t.Slug) {
		return repository.ErrInvalidInput
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.SubscribedModules = repository.NormalizeModules(t.SubscribedModules)
	now := nowText()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hub_tenant (id, slug, name, subscribed_modules, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Slug, t.Name, encodeModules(t.SubscribedModules), now, now,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("sqlite: create tenant: %w", err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, now)
	t.UpdatedAt = t.CreatedAt
	return nil
}

func (r *tenantRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hub_tenant WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete tenant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *tenantRepo) UpdateSubscriptions(ctx context.Context, id string, fn repository.SubscriptionMutator) (*repository.Tenant, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := r.get(ctx, tx, "id", id)
	if err != nil {
		return nil, err
	}

	next, err := fn(append([]string{}, current.SubscribedModules...))
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE hub_tenant SET subscribed_modules = ?, updated_at = ? WHERE id = ?`,
		encodeModules(next), nowText(), id,
	); err != nil {
		return nil, fmt.Errorf("sqlite: update subscriptions: %w", err)
	}

	out, err := r.get(ctx, tx, "id", id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit: %w", err)
	}
	return out, nil
}

func (r *tenantRepo) RecordHeartbeat(ctx context.Context, id string, hb repository.Heartbeat) (*repository.Tenant, error) {
	b, err := json.Marshal(hb)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE hub_tenant SET last_heartbeat = ? WHERE id = ?`, string(b), id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: record heartbeat: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, repository.ErrNotFound
	}

	out, err := r.get(ctx, tx, "id", id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit: %w", err)
	}
	return out, nil
}
