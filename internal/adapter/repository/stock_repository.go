package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
	"github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

// PostgresStockRepository implementa product.StockRepository usando
// PostgreSQL. Toda operação multi-linha roda como uma única transação
// SERIALIZABLE com reexecução automática em conflito de serialização;
// dois chamadores concorrentes sobre o mesmo (produto, filial) serializam
// e cada um recalcula o disponível a partir do último estado confirmado.
type PostgresStockRepository struct {
	db *database.PostgresDB
}

// NewPostgresStockRepository cria uma nova instância de PostgresStockRepository
func NewPostgresStockRepository(db *database.PostgresDB) *PostgresStockRepository {
	return &PostgresStockRepository{
		db: db,
	}
}

// Adjust implementa product.StockRepository.Adjust
func (r *PostgresStockRepository) Adjust(ctx context.Context, productID, branchID string, delta int, notes string) (*product.BranchStock, error) {
	if productID == "" || branchID == "" {
		return nil, product.ErrInvalidQuantity
	}

	tenantID := tenant.GetTenantIDFromContext(ctx)

	var result *product.BranchStock
	err := r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		stock, err := readStockOrZero(ctx, tx, tenantID, productID, branchID)
		if err != nil {
			return err
		}

		newQuantity := stock.Quantity + delta
		if newQuantity < 0 || newQuantity < stock.Reserved {
			return &product.InsufficientStockError{Shortages: []product.Shortage{{
				ProductID: productID,
				BranchID:  branchID,
				Requested: -delta,
				Available: stock.Available(),
			}}}
		}

		if err := writeStock(ctx, tx, stock, newQuantity, stock.Reserved); err != nil {
			return err
		}

		if err := insertStockMovement(ctx, tx, &product.StockMovement{
			ID:               uuid.New().String(),
			TenantID:         tenantID,
			BranchID:         branchID,
			ProductID:        productID,
			Type:             product.MovementAdjust,
			Quantity:         delta,
			PreviousQuantity: stock.Quantity,
			NewQuantity:      newQuantity,
			Notes:            notes,
			CreatedAt:        time.Now(),
		}); err != nil {
			return err
		}

		stock.Quantity = newQuantity
		result = stock
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// BatchAdjust implementa product.StockRepository.BatchAdjust. As
// quantidades das linhas são deltas com sinal; pares débito/crédito de
// transferência entre filiais chegam como duas linhas do mesmo lote.
func (r *PostgresStockRepository) BatchAdjust(ctx context.Context, deltas []product.StockLine, referenceID string) error {
	if len(deltas) == 0 {
		return product.ErrInvalidQuantity
	}

	for _, line := range deltas {
		if line.ProductID == "" || line.BranchID == "" || line.Quantity == 0 {
			return fmt.Errorf("%w: produto %s filial %s delta %d",
				product.ErrInvalidQuantity, line.ProductID, line.BranchID, line.Quantity)
		}
	}

	tenantID := tenant.GetTenantIDFromContext(ctx)

	// Parcelas repetidas do mesmo (produto, filial) somam antes da
	// validação; deltas opostos que se anulam viram no-op
	lines := product.MergeLines(deltas)
	nonZero := lines[:0]
	for _, line := range lines {
		if line.Quantity != 0 {
			nonZero = append(nonZero, line)
		}
	}
	lines = nonZero

	movementType := product.MovementAdjust
	if referenceID != "" {
		movementType = product.MovementTransfer
	}

	return r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		var shortages []product.Shortage

		stocks := make([]*product.BranchStock, len(lines))
		for i, line := range lines {
			stock, err := readStockOrZero(ctx, tx, tenantID, line.ProductID, line.BranchID)
			if err != nil {
				return err
			}
			stocks[i] = stock

			newQuantity := stock.Quantity + line.Quantity
			if newQuantity < 0 || newQuantity < stock.Reserved {
				shortages = append(shortages, product.Shortage{
					ProductID: line.ProductID,
					BranchID:  line.BranchID,
					Requested: -line.Quantity,
					Available: stock.Available(),
				})
			}
		}

		if len(shortages) > 0 {
			return &product.InsufficientStockError{Shortages: shortages}
		}

		for i, line := range lines {
			stock := stocks[i]
			newQuantity := stock.Quantity + line.Quantity

			if err := writeStock(ctx, tx, stock, newQuantity, stock.Reserved); err != nil {
				return err
			}

			if err := insertStockMovement(ctx, tx, &product.StockMovement{
				ID:               uuid.New().String(),
				TenantID:         tenantID,
				BranchID:         line.BranchID,
				ProductID:        line.ProductID,
				Type:             movementType,
				Quantity:         line.Quantity,
				PreviousQuantity: stock.Quantity,
				NewQuantity:      newQuantity,
				ReferenceID:      referenceID,
				CreatedAt:        time.Now(),
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

// Reserve implementa product.StockRepository.Reserve
func (r *PostgresStockRepository) Reserve(ctx context.Context, lines []product.StockLine, referenceID string) error {
	if err := product.ValidateLines(lines); err != nil {
		return err
	}

	tenantID := tenant.GetTenantIDFromContext(ctx)
	sorted := product.MergeLines(lines)

	return r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		var shortages []product.Shortage

		stocks := make([]*product.BranchStock, len(sorted))
		for i, line := range sorted {
			stock, err := readStockOrZero(ctx, tx, tenantID, line.ProductID, line.BranchID)
			if err != nil {
				return err
			}
			stocks[i] = stock

			if line.Quantity > stock.Available() {
				shortages = append(shortages, product.Shortage{
					ProductID: line.ProductID,
					BranchID:  line.BranchID,
					Requested: line.Quantity,
					Available: stock.Available(),
				})
			}
		}

		if len(shortages) > 0 {
			return &product.InsufficientStockError{Shortages: shortages}
		}

		for i, line := range sorted {
			stock := stocks[i]
			newReserved := stock.Reserved + line.Quantity

			if err := writeStock(ctx, tx, stock, stock.Quantity, newReserved); err != nil {
				return err
			}

			if err := insertStockMovement(ctx, tx, &product.StockMovement{
				ID:               uuid.New().String(),
				TenantID:         tenantID,
				BranchID:         line.BranchID,
				ProductID:        line.ProductID,
				Type:             product.MovementReserve,
				Quantity:         line.Quantity,
				PreviousQuantity: stock.Quantity,
				NewQuantity:      stock.Quantity,
				ReferenceID:      referenceID,
				CreatedAt:        time.Now(),
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

// Release implementa product.StockRepository.Release. Limpeza de melhor
// esforço: reservas são decrementadas com piso em zero e linhas sem
// registro de estoque são ignoradas.
func (r *PostgresStockRepository) Release(ctx context.Context, lines []product.StockLine, referenceID string) error {
	if err := product.ValidateLines(lines); err != nil {
		return err
	}

	tenantID := tenant.GetTenantIDFromContext(ctx)
	sorted := product.MergeLines(lines)

	return r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		for _, line := range sorted {
			stock, err := readStockForUpdate(ctx, tx, tenantID, line.ProductID, line.BranchID)
			if err != nil {
				if errors.Is(err, product.ErrStockNotFound) {
					continue
				}
				return err
			}

			newReserved := stock.Reserved - line.Quantity
			if newReserved < 0 {
				newReserved = 0
			}

			if err := writeStock(ctx, tx, stock, stock.Quantity, newReserved); err != nil {
				return err
			}

			if err := insertStockMovement(ctx, tx, &product.StockMovement{
				ID:               uuid.New().String(),
				TenantID:         tenantID,
				BranchID:         line.BranchID,
				ProductID:        line.ProductID,
				Type:             product.MovementRelease,
				Quantity:         line.Quantity,
				PreviousQuantity: stock.Quantity,
				NewQuantity:      stock.Quantity,
				ReferenceID:      referenceID,
				CreatedAt:        time.Now(),
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

// Commit implementa product.StockRepository.Commit. O estoque físico é
// revalidado mesmo quando a reserva deveria garanti-lo, protegendo contra
// ajustes diretos ocorridos entre a reserva e a baixa.
func (r *PostgresStockRepository) Commit(ctx context.Context, lines []product.StockLine, referenceID string) error {
	if err := product.ValidateLines(lines); err != nil {
		return err
	}

	tenantID := tenant.GetTenantIDFromContext(ctx)
	sorted := product.MergeLines(lines)

	return r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		var shortages []product.Shortage

		stocks := make([]*product.BranchStock, len(sorted))
		for i, line := range sorted {
			stock, err := readStockForUpdate(ctx, tx, tenantID, line.ProductID, line.BranchID)
			if err != nil {
				if errors.Is(err, product.ErrStockNotFound) {
					shortages = append(shortages, product.Shortage{
						ProductID: line.ProductID,
						BranchID:  line.BranchID,
						Requested: line.Quantity,
						Available: 0,
					})
					continue
				}
				return err
			}
			stocks[i] = stock

			if line.Quantity > stock.Quantity {
				shortages = append(shortages, product.Shortage{
					ProductID: line.ProductID,
					BranchID:  line.BranchID,
					Requested: line.Quantity,
					Available: stock.Quantity,
				})
			}
		}

		if len(shortages) > 0 {
			return &product.InsufficientStockError{Shortages: shortages}
		}

		for i, line := range sorted {
			stock := stocks[i]
			newQuantity := stock.Quantity - line.Quantity
			newReserved := stock.Reserved - line.Quantity
			if newReserved < 0 {
				newReserved = 0
			}

			if err := writeStock(ctx, tx, stock, newQuantity, newReserved); err != nil {
				return err
			}

			if err := insertStockMovement(ctx, tx, &product.StockMovement{
				ID:               uuid.New().String(),
				TenantID:         tenantID,
				BranchID:         line.BranchID,
				ProductID:        line.ProductID,
				Type:             product.MovementCommit,
				Quantity:         -line.Quantity,
				PreviousQuantity: stock.Quantity,
				NewQuantity:      newQuantity,
				ReferenceID:      referenceID,
				CreatedAt:        time.Now(),
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

// FindStock implementa product.StockRepository.FindStock
func (r *PostgresStockRepository) FindStock(ctx context.Context, productID, branchID string) (*product.BranchStock, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	stock := &product.BranchStock{}
	err = conn.QueryRow(ctx, `
		SELECT tenant_id, branch_id, product_id, quantity, reserved, updated_at
		FROM product_stock
		WHERE product_id = $1 AND branch_id = $2
	`, productID, branchID).Scan(
		&stock.TenantID,
		&stock.BranchID,
		&stock.ProductID,
		&stock.Quantity,
		&stock.Reserved,
		&stock.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrStockNotFound
		}
		return nil, fmt.Errorf("falha ao buscar estoque: %w", err)
	}

	return stock, nil
}

// ListStockByProduct implementa product.StockRepository.ListStockByProduct
func (r *PostgresStockRepository) ListStockByProduct(ctx context.Context, productID string) ([]*product.BranchStock, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT tenant_id, branch_id, product_id, quantity, reserved, updated_at
		FROM product_stock
		WHERE product_id = $1
		ORDER BY branch_id
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar estoque: %w", err)
	}
	defer rows.Close()

	var stocks []*product.BranchStock
	for rows.Next() {
		stock := &product.BranchStock{}
		if err := rows.Scan(
			&stock.TenantID,
			&stock.BranchID,
			&stock.ProductID,
			&stock.Quantity,
			&stock.Reserved,
			&stock.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("falha ao ler estoque: %w", err)
		}
		stocks = append(stocks, stock)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return stocks, nil
}

// ListMovements implementa product.StockRepository.ListMovements
func (r *PostgresStockRepository) ListMovements(ctx context.Context, productID, branchID string, limit, offset int) ([]*product.StockMovement, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT id, tenant_id, branch_id, product_id, type, quantity,
		       previous_quantity, new_quantity, COALESCE(reference_id, ''), COALESCE(notes, ''), created_at
		FROM stock_movements
		WHERE product_id = $1 AND branch_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, productID, branchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar movimentações: %w", err)
	}
	defer rows.Close()

	var movements []*product.StockMovement
	for rows.Next() {
		m := &product.StockMovement{}
		var movementType string
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.BranchID,
			&m.ProductID,
			&movementType,
			&m.Quantity,
			&m.PreviousQuantity,
			&m.NewQuantity,
			&m.ReferenceID,
			&m.Notes,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("falha ao ler movimentação: %w", err)
		}
		m.Type = product.MovementType(movementType)
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return movements, nil
}

func readStockForUpdate(ctx context.Context, tx pgx.Tx, tenantID, productID, branchID string) (*product.BranchStock, error) {
	stock := &product.BranchStock{
		TenantID:  tenantID,
		ProductID: productID,
		BranchID:  branchID,
	}

	err := tx.QueryRow(ctx, `
		SELECT quantity, reserved, updated_at
		FROM product_stock
		WHERE product_id = $1 AND branch_id = $2
	`, productID, branchID).Scan(&stock.Quantity, &stock.Reserved, &stock.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrStockNotFound
		}
		return nil, fmt.Errorf("falha ao ler estoque: %w", err)
	}

	return stock, nil
}

// readStockOrZero trata a ausência de registro como estoque zerado, para
// que ajustes positivos criem a linha de estoque na primeira gravação
func readStockOrZero(ctx context.Context, tx pgx.Tx, tenantID, productID, branchID string) (*product.BranchStock, error) {
	stock, err := readStockForUpdate(ctx, tx, tenantID, productID, branchID)
	if err != nil {
		if errors.Is(err, product.ErrStockNotFound) {
			return &product.BranchStock{
				TenantID:  tenantID,
				ProductID: productID,
				BranchID:  branchID,
			}, nil
		}
		return nil, err
	}
	return stock, nil
}

func writeStock(ctx context.Context, tx pgx.Tx, stock *product.BranchStock, quantity, reserved int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO product_stock (tenant_id, branch_id, product_id, quantity, reserved, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (branch_id, product_id)
		DO UPDATE SET quantity = $4, reserved = $5, updated_at = $6
	`, stock.TenantID, stock.BranchID, stock.ProductID, quantity, reserved, time.Now())

	if err != nil {
		return fmt.Errorf("falha ao gravar estoque: %w", err)
	}

	return nil
}

func insertStockMovement(ctx context.Context, tx pgx.Tx, m *product.StockMovement) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (
			id, tenant_id, branch_id, product_id, type, quantity,
			previous_quantity, new_quantity, reference_id, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11)
	`,
		m.ID,
		m.TenantID,
		m.BranchID,
		m.ProductID,
		string(m.Type),
		m.Quantity,
		m.PreviousQuantity,
		m.NewQuantity,
		m.ReferenceID,
		m.Notes,
		m.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("falha ao registrar movimentação de estoque: %w", err)
	}

	return nil
}
