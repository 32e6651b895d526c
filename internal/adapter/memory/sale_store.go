package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
)

// SaleRepository implementa sale.Repository em memória
type SaleRepository struct {
	store *Store
}

// Create implementa sale.Repository.Create. A validação de estoque, a baixa
// linha a linha, a gravação da venda e o lançamento na sessão acontecem sob
// o mesmo mutex: a mesma unidade atômica do adaptador PostgreSQL.
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Vendas vinculadas a reserva não dão baixa aqui: o estoque foi
	// reservado na criação da reserva e é baixado pelo Commit dela.
	// Itens repetidos do mesmo produto somam em uma única linha de baixa,
	// de modo que a validação compara o total pedido contra o disponível.
	var decrements []product.StockLine
	var stocks []*product.BranchStock
	if s.ReservationID == "" {
		lines := make([]product.StockLine, 0, len(s.Items))
		for _, item := range s.Items {
			lines = append(lines, product.StockLine{
				ProductID: item.ProductID,
				BranchID:  s.BranchID,
				Quantity:  item.Quantity,
			})
		}
		decrements = product.MergeLines(lines)

		var shortages []product.Shortage
		stocks = make([]*product.BranchStock, len(decrements))
		for i, line := range decrements {
			stock, ok := r.store.stocks[stockKey(line.BranchID, line.ProductID)]
			if !ok {
				shortages = append(shortages, product.Shortage{
					ProductID: line.ProductID,
					BranchID:  line.BranchID,
					Requested: line.Quantity,
					Available: 0,
				})
				continue
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
	}

	key := counterKey(s.BranchID, s.CreatedAt)
	r.store.saleCounters[key]++
	s.Number = r.store.saleCounters[key]

	if s.ReservationID == "" {
		for i, line := range decrements {
			stock := stocks[i]
			newQuantity := stock.Quantity - line.Quantity

			r.store.stockMovements = append(r.store.stockMovements, product.StockMovement{
				ID:               uuid.New().String(),
				TenantID:         s.TenantID,
				BranchID:         line.BranchID,
				ProductID:        line.ProductID,
				Type:             product.MovementSale,
				Quantity:         -line.Quantity,
				PreviousQuantity: stock.Quantity,
				NewQuantity:      newQuantity,
				ReferenceID:      s.ID,
				CreatedAt:        time.Now(),
			})

			stock.Quantity = newQuantity
			stock.UpdatedAt = time.Now()
		}
	}

	if s.SessionID != "" {
		if !r.postSaleToSession(s) {
			s.SessionID = ""
		}
	}

	r.store.sales[s.ID] = cloneSale(s)
	return nil
}

// postSaleToSession atualiza os contadores da sessão e registra o lançamento
// descritivo da venda. Retorna false se a sessão não está mais aberta.
// Chamador deve segurar o mutex.
func (r *SaleRepository) postSaleToSession(s *sale.Sale) bool {
	session, ok := r.store.sessions[s.SessionID]
	if !ok || !session.IsOpen() {
		return false
	}

	session.TotalSales = session.TotalSales.Add(s.Total)
	switch s.PaymentMethod {
	case sale.PaymentCash:
		session.CashSales = session.CashSales.Add(s.Total)
	case sale.PaymentCard:
		session.CardSales = session.CardSales.Add(s.Total)
	default:
		session.DigitalSales = session.DigitalSales.Add(s.Total)
	}
	session.ExpectedAmount = session.ExpectedAmount.Add(s.CashAmount())
	session.UpdatedAt = time.Now()

	r.store.cashMovements = append(r.store.cashMovements, cashier.Movement{
		ID:          uuid.New().String(),
		TenantID:    s.TenantID,
		SessionID:   s.SessionID,
		Type:        cashier.MovementSale,
		Amount:      s.Total,
		Reason:      fmt.Sprintf("Venda nº %d", s.Number),
		ReferenceID: s.ID,
		CreatedAt:   time.Now(),
	})

	return true
}

// FindByID implementa sale.Repository.FindByID
func (r *SaleRepository) FindByID(ctx context.Context, id string) (*sale.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sales[id]
	if !ok {
		return nil, sale.ErrNotFound
	}

	return cloneSale(s), nil
}

// ListByBranch implementa sale.Repository.ListByBranch
func (r *SaleRepository) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*sale.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var sales []*sale.Sale
	for _, s := range r.store.sales {
		if s.BranchID == branchID {
			sales = append(sales, cloneSale(s))
		}
	}

	sort.Slice(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})

	return paginate(sales, limit, offset), nil
}
