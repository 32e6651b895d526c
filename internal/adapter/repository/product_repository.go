package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
)

// Erros específicos do repositório
var (
	ErrProductDuplicateKey = errors.New("produto com mesmo SKU já existe para este tenant")
)

// PostgresProductRepository implementa a interface product.Repository usando PostgreSQL
type PostgresProductRepository struct {
	db *database.PostgresDB
}

// NewPostgresProductRepository cria uma nova instância de PostgresProductRepository
func NewPostgresProductRepository(db *database.PostgresDB) *PostgresProductRepository {
	return &PostgresProductRepository{
		db: db,
	}
}

// Create implementa product.Repository.Create
func (r *PostgresProductRepository) Create(ctx context.Context, p *product.Product) error {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	query := `
		INSERT INTO products (
			id, tenant_id, sku, barcode, name, description, unit,
			sell_price, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = conn.Exec(ctx, query,
		p.ID,
		p.TenantID,
		p.SKU,
		p.Barcode,
		p.Name,
		p.Description,
		p.Unit,
		p.SellPrice,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return ErrProductDuplicateKey
		}
		return fmt.Errorf("falha ao inserir produto: %w", err)
	}

	return nil
}

// FindByID implementa product.Repository.FindByID
func (r *PostgresProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	return scanProduct(conn.QueryRow(ctx, productSelect+" WHERE id = $1", id))
}

// FindBySKU implementa product.Repository.FindBySKU
func (r *PostgresProductRepository) FindBySKU(ctx context.Context, tenantID, sku string) (*product.Product, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	return scanProduct(conn.QueryRow(ctx, productSelect+" WHERE tenant_id = $1 AND sku = $2", tenantID, sku))
}

// ListByTenant implementa product.Repository.ListByTenant
func (r *PostgresProductRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*product.Product, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		productSelect+" WHERE tenant_id = $1 ORDER BY name ASC LIMIT $2 OFFSET $3",
		tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar produtos: %w", err)
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return products, nil
}

const productSelect = `
	SELECT id, tenant_id, sku, barcode, name, description, unit,
	       sell_price, active, created_at, updated_at
	FROM products
`

func scanProduct(row pgx.Row) (*product.Product, error) {
	p := &product.Product{}

	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.SKU,
		&p.Barcode,
		&p.Name,
		&p.Description,
		&p.Unit,
		&p.SellPrice,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("falha ao buscar produto: %w", err)
	}

	return p, nil
}
