package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/branch"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
)

// PostgresBranchRepository implementa branch.Repository usando PostgreSQL.
// Filiais vivem no schema public junto com os tenants, pois precisam ser
// resolvidas antes do search_path do tenant.
type PostgresBranchRepository struct {
	db *database.PostgresDB
}

// NewPostgresBranchRepository cria uma nova instância de PostgresBranchRepository
func NewPostgresBranchRepository(db *database.PostgresDB) *PostgresBranchRepository {
	return &PostgresBranchRepository{
		db: db,
	}
}

// Create implementa branch.Repository.Create
func (r *PostgresBranchRepository) Create(ctx context.Context, b *branch.Branch) error {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		INSERT INTO public.branches (id, tenant_id, name, code, status, is_main, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		b.ID,
		b.TenantID,
		b.Name,
		b.Code,
		string(b.Status),
		b.IsMain,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao inserir filial: %w", err)
	}

	return nil
}

// FindByID implementa branch.Repository.FindByID
func (r *PostgresBranchRepository) FindByID(ctx context.Context, id string) (*branch.Branch, error) {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	return scanBranch(conn.QueryRow(ctx, branchSelect+" WHERE id = $1", id))
}

// List implementa branch.Repository.List
func (r *PostgresBranchRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*branch.Branch, error) {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		branchSelect+" WHERE tenant_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3",
		tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar filiais: %w", err)
	}
	defer rows.Close()

	var branches []*branch.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return branches, nil
}

// UpdateStatus implementa branch.Repository.UpdateStatus
func (r *PostgresBranchRepository) UpdateStatus(ctx context.Context, id string, status branch.Status) error {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	result, err := conn.Exec(ctx, `
		UPDATE public.branches SET status = $1, updated_at = $2 WHERE id = $3
	`, string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("falha ao atualizar status da filial: %w", err)
	}

	if result.RowsAffected() == 0 {
		return branch.ErrNotFound
	}

	return nil
}

const branchSelect = `
	SELECT id, tenant_id, name, code, status, is_main, created_at, updated_at
	FROM public.branches
`

func scanBranch(row pgx.Row) (*branch.Branch, error) {
	b := &branch.Branch{}
	var status string

	err := row.Scan(
		&b.ID,
		&b.TenantID,
		&b.Name,
		&b.Code,
		&status,
		&b.IsMain,
		&b.CreatedAt,
		&b.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, branch.ErrNotFound
		}
		return nil, fmt.Errorf("falha ao buscar filial: %w", err)
	}

	b.Status = branch.Status(status)
	return b, nil
}
