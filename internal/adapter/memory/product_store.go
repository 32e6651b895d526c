package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

// ProductRepository implementa product.Repository em memória
type ProductRepository struct {
	store *Store
}

// Create implementa product.Repository.Create
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *p
	r.store.products[p.ID] = &clone
	return nil
}

// FindByID implementa product.Repository.FindByID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}

	clone := *p
	return &clone, nil
}

// FindBySKU implementa product.Repository.FindBySKU
func (r *ProductRepository) FindBySKU(ctx context.Context, tenantID, sku string) (*product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.products {
		if p.TenantID == tenantID && p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}

	return nil, product.ErrNotFound
}

// ListByTenant implementa product.Repository.ListByTenant
func (r *ProductRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*product.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var products []*product.Product
	for _, p := range r.store.products {
		if p.TenantID == tenantID {
			clone := *p
			products = append(products, &clone)
		}
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})

	return paginate(products, limit, offset), nil
}

// StockRepository implementa product.StockRepository em memória. Cada
// operação multi-linha roda sob o mutex do Store, preservando a mesma
// atomicidade tudo-ou-nada do adaptador PostgreSQL.
type StockRepository struct {
	store *Store
}

// Adjust implementa product.StockRepository.Adjust
func (r *StockRepository) Adjust(ctx context.Context, productID, branchID string, delta int, notes string) (*product.BranchStock, error) {
	if productID == "" || branchID == "" {
		return nil, product.ErrInvalidQuantity
	}

	tenantID := tenant.GetTenantIDFromContext(ctx)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stock := r.store.stockOrZero(tenantID, productID, branchID)

	newQuantity := stock.Quantity + delta
	if newQuantity < 0 || newQuantity < stock.Reserved {
		return nil, &product.InsufficientStockError{Shortages: []product.Shortage{{
			ProductID: productID,
			BranchID:  branchID,
			Requested: -delta,
			Available: stock.Available(),
		}}}
	}

	r.store.stockMovements = append(r.store.stockMovements, product.StockMovement{
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
	})

	stock.Quantity = newQuantity
	stock.UpdatedAt = time.Now()
	r.store.putStock(stock)

	return cloneStock(stock), nil
}

// BatchAdjust implementa product.StockRepository.BatchAdjust. As quantidades
// são deltas com sinal e o lote é aplicado por inteiro ou rejeitado por
// inteiro.
func (r *StockRepository) BatchAdjust(ctx context.Context, deltas []product.StockLine, referenceID string) error {
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
	merged := product.MergeLines(deltas)
	nonZero := merged[:0]
	for _, line := range merged {
		if line.Quantity != 0 {
			nonZero = append(nonZero, line)
		}
	}
	deltas = nonZero

	movementType := product.MovementAdjust
	if referenceID != "" {
		movementType = product.MovementTransfer
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var shortages []product.Shortage
	stocks := make([]*product.BranchStock, len(deltas))
	for i, line := range deltas {
		stock := r.store.stockOrZero(tenantID, line.ProductID, line.BranchID)
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

	for i, line := range deltas {
		stock := stocks[i]
		newQuantity := stock.Quantity + line.Quantity

		r.store.stockMovements = append(r.store.stockMovements, product.StockMovement{
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
		})

		stock.Quantity = newQuantity
		stock.UpdatedAt = time.Now()
		r.store.putStock(stock)
	}

	return nil
}

// Reserve implementa product.StockRepository.Reserve
func (r *StockRepository) Reserve(ctx context.Context, lines []product.StockLine, referenceID string) error {
	if err := product.ValidateLines(lines); err != nil {
		return err
	}

	lines = product.MergeLines(lines)
	tenantID := tenant.GetTenantIDFromContext(ctx)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var shortages []product.Shortage
	stocks := make([]*product.BranchStock, len(lines))
	for i, line := range lines {
		stock := r.store.stockOrZero(tenantID, line.ProductID, line.BranchID)
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

	for i, line := range lines {
		stock := stocks[i]

		r.store.stockMovements = append(r.store.stockMovements, product.StockMovement{
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
		})

		stock.Reserved += line.Quantity
		stock.UpdatedAt = time.Now()
		r.store.putStock(stock)
	}

	return nil
}

// Release implementa product.StockRepository.Release. Linhas sem registro de
// estoque são ignoradas e a reserva tem piso em zero.
func (r *StockRepository) Release(ctx context.Context, lines []product.StockLine, referenceID string) error {
	if err := product.ValidateLines(lines); err != nil {
		return err
	}

	lines = product.MergeLines(lines)
	tenantID := tenant.GetTenantIDFromContext(ctx)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, line := range lines {
		stock, ok := r.store.stocks[stockKey(line.BranchID, line.ProductID)]
		if !ok {
			continue
		}

		r.store.stockMovements = append(r.store.stockMovements, product.StockMovement{
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
		})

		stock.Reserved -= line.Quantity
		if stock.Reserved < 0 {
			stock.Reserved = 0
		}
		stock.UpdatedAt = time.Now()
	}

	return nil
}

// Commit implementa product.StockRepository.Commit
func (r *StockRepository) Commit(ctx context.Context, lines []product.StockLine, referenceID string) error {
	if err := product.ValidateLines(lines); err != nil {
		return err
	}

	lines = product.MergeLines(lines)
	tenantID := tenant.GetTenantIDFromContext(ctx)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var shortages []product.Shortage
	stocks := make([]*product.BranchStock, len(lines))
	for i, line := range lines {
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

	for i, line := range lines {
		stock := stocks[i]
		newQuantity := stock.Quantity - line.Quantity

		r.store.stockMovements = append(r.store.stockMovements, product.StockMovement{
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
		})

		stock.Quantity = newQuantity
		stock.Reserved -= line.Quantity
		if stock.Reserved < 0 {
			stock.Reserved = 0
		}
		stock.UpdatedAt = time.Now()
	}

	return nil
}

// FindStock implementa product.StockRepository.FindStock
func (r *StockRepository) FindStock(ctx context.Context, productID, branchID string) (*product.BranchStock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stock, ok := r.store.stocks[stockKey(branchID, productID)]
	if !ok {
		return nil, product.ErrStockNotFound
	}

	return cloneStock(stock), nil
}

// ListStockByProduct implementa product.StockRepository.ListStockByProduct
func (r *StockRepository) ListStockByProduct(ctx context.Context, productID string) ([]*product.BranchStock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var stocks []*product.BranchStock
	for _, stock := range r.store.stocks {
		if stock.ProductID == productID {
			stocks = append(stocks, cloneStock(stock))
		}
	}

	sort.Slice(stocks, func(i, j int) bool {
		return stocks[i].BranchID < stocks[j].BranchID
	})

	return stocks, nil
}

// ListMovements implementa product.StockRepository.ListMovements
func (r *StockRepository) ListMovements(ctx context.Context, productID, branchID string, limit, offset int) ([]*product.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var movements []*product.StockMovement
	for i := len(r.store.stockMovements) - 1; i >= 0; i-- {
		m := r.store.stockMovements[i]
		if m.ProductID == productID && m.BranchID == branchID {
			movements = append(movements, &m)
		}
	}

	return paginate(movements, limit, offset), nil
}

// paginate aplica limit/offset sobre uma fatia já ordenada
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
