package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/tenant"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
)

// PostgresTenantRepository implementa tenant.Repository usando PostgreSQL.
// Tenants vivem no schema public; os dados operacionais de cada tenant
// vivem no schema próprio criado junto com o registro.
type PostgresTenantRepository struct {
	db *database.PostgresDB
}

// NewPostgresTenantRepository cria uma nova instância de PostgresTenantRepository
func NewPostgresTenantRepository(db *database.PostgresDB) *PostgresTenantRepository {
	return &PostgresTenantRepository{
		db: db,
	}
}

// Create implementa tenant.Repository.Create
func (r *PostgresTenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		INSERT INTO public.tenants (id, name, document, status, schema, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		t.ID,
		t.Name,
		t.Document,
		string(t.Status),
		t.Schema,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao inserir tenant: %w", err)
	}

	return nil
}

// FindByID implementa tenant.Repository.FindByID
func (r *PostgresTenantRepository) FindByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	return scanTenant(conn.QueryRow(ctx, tenantSelect+" WHERE id = $1", id))
}

// FindByDocument implementa tenant.Repository.FindByDocument
func (r *PostgresTenantRepository) FindByDocument(ctx context.Context, document string) (*tenant.Tenant, error) {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	return scanTenant(conn.QueryRow(ctx, tenantSelect+" WHERE document = $1", document))
}

// List implementa tenant.Repository.List
func (r *PostgresTenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		tenantSelect+" ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return tenants, nil
}

// UpdateStatus implementa tenant.Repository.UpdateStatus
func (r *PostgresTenantRepository) UpdateStatus(ctx context.Context, id string, status tenant.Status) error {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	result, err := conn.Exec(ctx, `
		UPDATE public.tenants SET status = $1, updated_at = $2 WHERE id = $3
	`, string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("falha ao atualizar status do tenant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return tenant.ErrNotFound
	}

	return nil
}

const tenantSelect = `
	SELECT id, name, document, status, schema, created_at, updated_at
	FROM public.tenants
`

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	t := &tenant.Tenant{}
	var status string

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Document,
		&status,
		&t.Schema,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrNotFound
		}
		return nil, fmt.Errorf("falha ao buscar tenant: %w", err)
	}

	t.Status = tenant.Status(status)
	return t, nil
}
