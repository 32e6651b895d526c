package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
	"github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

// PostgresSaleRepository implementa sale.Repository usando PostgreSQL.
// A gravação da venda, a baixa de estoque linha a linha e o lançamento na
// sessão de caixa compõem uma única transação SERIALIZABLE: ou tudo é
// confirmado, ou nada é.
type PostgresSaleRepository struct {
	db *database.PostgresDB
}

// NewPostgresSaleRepository cria uma nova instância de PostgresSaleRepository
func NewPostgresSaleRepository(db *database.PostgresDB) *PostgresSaleRepository {
	return &PostgresSaleRepository{
		db: db,
	}
}

// Create implementa sale.Repository.Create
func (r *PostgresSaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	tenantID := tenant.GetTenantIDFromContext(ctx)
	if tenantID == "" {
		tenantID = s.TenantID
	}

	// Linhas de baixa em ordem determinística de (produto, filial).
	// Itens repetidos do mesmo produto somam em uma única linha: a
	// validação compara o total pedido contra o disponível.
	lines := make([]product.StockLine, 0, len(s.Items))
	for _, item := range s.Items {
		lines = append(lines, product.StockLine{
			ProductID: item.ProductID,
			BranchID:  s.BranchID,
			Quantity:  item.Quantity,
		})
	}
	sorted := product.MergeLines(lines)

	sessionID := s.SessionID

	return r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		// O corpo pode ser reexecutado: restaurar o vínculo original
		s.SessionID = sessionID

		// Número sequencial por (filial, dia) via contador atômico
		day := s.CreatedAt.UTC().Truncate(24 * time.Hour)
		err := tx.QueryRow(ctx, `
			INSERT INTO sale_counters (branch_id, day, last_number)
			VALUES ($1, $2, 1)
			ON CONFLICT (branch_id, day)
			DO UPDATE SET last_number = sale_counters.last_number + 1
			RETURNING last_number
		`, s.BranchID, day).Scan(&s.Number)
		if err != nil {
			return fmt.Errorf("falha ao gerar número da venda: %w", err)
		}

		// Vendas vinculadas a reserva não dão baixa aqui: o estoque foi
		// reservado na criação da reserva e é baixado pelo Commit dela.
		if s.ReservationID != "" {
			if err := insertSale(ctx, tx, s); err != nil {
				return err
			}
			if s.SessionID != "" {
				posted, err := postSaleToSession(ctx, tx, s)
				if err != nil {
					return err
				}
				if !posted {
					s.SessionID = ""
				}
			}
			return nil
		}

		// Releitura e baixa de cada linha dentro da transação
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
			newQuantity := stock.Quantity - line.Quantity

			if err := writeStock(ctx, tx, stock, newQuantity, stock.Reserved); err != nil {
				return err
			}

			if err := insertStockMovement(ctx, tx, &product.StockMovement{
				ID:               uuid.New().String(),
				TenantID:         tenantID,
				BranchID:         line.BranchID,
				ProductID:        line.ProductID,
				Type:             product.MovementSale,
				Quantity:         -line.Quantity,
				PreviousQuantity: stock.Quantity,
				NewQuantity:      newQuantity,
				ReferenceID:      s.ID,
				CreatedAt:        time.Now(),
			}); err != nil {
				return err
			}
		}

		if err := insertSale(ctx, tx, s); err != nil {
			return err
		}

		// Lançamento na sessão de caixa, quando há sessão vinculada. A
		// sessão pode ter sido fechada entre a resolução e o commit; nesse
		// caso a venda é confirmada sem vínculo e o chamador registra a
		// pendência de conciliação.
		if s.SessionID != "" {
			posted, err := postSaleToSession(ctx, tx, s)
			if err != nil {
				return err
			}
			if !posted {
				s.SessionID = ""
			}
		}

		return nil
	})
}

// FindByID implementa sale.Repository.FindByID
func (r *PostgresSaleRepository) FindByID(ctx context.Context, id string) (*sale.Sale, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	s, err := scanSale(conn.QueryRow(ctx, saleSelect+" WHERE id = $1", id))
	if err != nil {
		return nil, err
	}

	items, err := listSaleItems(ctx, conn, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items

	return s, nil
}

// ListByBranch implementa sale.Repository.ListByBranch
func (r *PostgresSaleRepository) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*sale.Sale, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		saleSelect+" WHERE branch_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		branchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar vendas: %w", err)
	}
	defer rows.Close()

	var sales []*sale.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	for _, s := range sales {
		items, err := listSaleItems(ctx, conn, s.ID)
		if err != nil {
			return nil, err
		}
		s.Items = items
	}

	return sales, nil
}

const saleSelect = `
	SELECT id, tenant_id, branch_id, COALESCE(session_id, ''),
	       COALESCE(reservation_id, ''), number, total, payment_method, created_at
	FROM sales
`

func scanSale(row pgx.Row) (*sale.Sale, error) {
	s := &sale.Sale{}
	var method string

	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.BranchID,
		&s.SessionID,
		&s.ReservationID,
		&s.Number,
		&s.Total,
		&method,
		&s.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sale.ErrNotFound
		}
		return nil, fmt.Errorf("falha ao buscar venda: %w", err)
	}

	s.PaymentMethod = sale.PaymentMethod(method)
	return s, nil
}

func insertSale(ctx context.Context, tx pgx.Tx, s *sale.Sale) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO sales (
			id, tenant_id, branch_id, session_id, reservation_id,
			number, total, payment_method, created_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
	`,
		s.ID,
		s.TenantID,
		s.BranchID,
		s.SessionID,
		s.ReservationID,
		s.Number,
		s.Total,
		string(s.PaymentMethod),
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao inserir venda: %w", err)
	}

	for _, item := range s.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_items (
				id, sale_id, product_id, description, quantity, unit_price, subtotal
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			uuid.New().String(),
			s.ID,
			item.ProductID,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("falha ao inserir item da venda: %w", err)
		}
	}

	return nil
}

// postSaleToSession atualiza os contadores da sessão e registra o
// lançamento descritivo da venda. Retorna false se a sessão não está mais
// aberta.
func postSaleToSession(ctx context.Context, tx pgx.Tx, s *sale.Sale) (bool, error) {
	var status string
	err := tx.QueryRow(ctx,
		"SELECT status FROM cash_register_sessions WHERE id = $1",
		s.SessionID).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("falha ao buscar sessão: %w", err)
	}

	if cashier.Status(status) != cashier.StatusOpen {
		return false, nil
	}

	var column string
	switch s.PaymentMethod {
	case sale.PaymentCash:
		column = "cash_sales"
	case sale.PaymentCard:
		column = "card_sales"
	default:
		column = "digital_sales"
	}

	query := fmt.Sprintf(`
		UPDATE cash_register_sessions
		SET total_sales = total_sales + $1,
		    %s = %s + $1,
		    expected_amount = expected_amount + $2,
		    updated_at = NOW()
		WHERE id = $3
	`, column, column)

	if _, err := tx.Exec(ctx, query, s.Total, s.CashAmount(), s.SessionID); err != nil {
		return false, fmt.Errorf("falha ao atualizar contadores da sessão: %w", err)
	}

	movement := &cashier.Movement{
		ID:          uuid.New().String(),
		TenantID:    s.TenantID,
		SessionID:   s.SessionID,
		Type:        cashier.MovementSale,
		Amount:      s.Total,
		Reason:      fmt.Sprintf("Venda nº %d", s.Number),
		ReferenceID: s.ID,
		CreatedAt:   time.Now(),
	}

	if err := insertCashMovement(ctx, tx, movement); err != nil {
		return false, err
	}

	return true, nil
}

func listSaleItems(ctx context.Context, q queryer, saleID string) ([]sale.Item, error) {
	rows, err := q.Query(ctx, `
		SELECT product_id, description, quantity, unit_price, subtotal
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY description
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar itens da venda: %w", err)
	}
	defer rows.Close()

	var items []sale.Item
	for rows.Next() {
		var item sale.Item
		if err := rows.Scan(
			&item.ProductID,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("falha ao ler item da venda: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return items, nil
}
