package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/memory"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
	"github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

type saleFixture struct {
	store   *memory.Store
	sales   *SaleService
	cashier *CashierService
	ctx     context.Context
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewNop()

	return &saleFixture{
		store:   store,
		sales:   NewSaleService(store.Sales(), store.Sessions(), log),
		cashier: NewCashierService(store.Sessions(), store.CashMovements(), log),
		ctx:     tenant.SetTenantIDContext(context.Background(), "tenant-1"),
	}
}

func (f *saleFixture) seedStock(t *testing.T, productID, branchID string, quantity int) {
	t.Helper()
	_, err := f.store.Stock().Adjust(f.ctx, productID, branchID, quantity, "carga inicial")
	require.NoError(t, err)
}

func saleItem(productID string, quantity int, unitPrice int64) sale.Item {
	return sale.Item{
		ProductID:   productID,
		Description: "Produto " + productID,
		Quantity:    quantity,
		UnitPrice:   decimal.NewFromInt(unitPrice),
	}
}

func TestRecordSaleDecrementsStock(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	s, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 3, 5)}, sale.PaymentCash)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Number)
	assert.True(t, s.Total.Equal(decimal.NewFromInt(15)))

	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 7, stock.Quantity)
}

func TestRecordSaleInsufficientStockNoPartialWrite(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)
	f.seedStock(t, "prod-b", "branch-1", 1)

	_, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1", []sale.Item{
		saleItem("prod-a", 2, 5),
		saleItem("prod-b", 3, 8),
	}, sale.PaymentCash)
	require.Error(t, err)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	// Nenhuma linha baixada, nenhuma venda gravada
	stockA, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 10, stockA.Quantity)

	sales, err := f.sales.ListSales(f.ctx, "branch-1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRecordSaleAggregatesDuplicateItems(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 5)

	// Duas linhas do mesmo produto pedem 6 no total; disponível é 5
	_, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1", []sale.Item{
		saleItem("prod-a", 3, 5),
		saleItem("prod-a", 3, 5),
	}, sale.PaymentCash)
	require.Error(t, err)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stock.Quantity)

	// Com estoque suficiente a baixa soma as duas linhas
	f.seedStock(t, "prod-a", "branch-1", 5)

	s, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1", []sale.Item{
		saleItem("prod-a", 3, 5),
		saleItem("prod-a", 3, 5),
	}, sale.PaymentCash)
	require.NoError(t, err)
	assert.True(t, s.Total.Equal(decimal.NewFromInt(30)))
	require.Len(t, s.Items, 2)

	stock, err = f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 4, stock.Quantity)
}

func TestRecordSaleRespectsReservedStock(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	err := f.store.Stock().Reserve(f.ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 8},
	}, "res-1")
	require.NoError(t, err)

	// Disponível é 2; vender 3 falha mesmo com físico 10
	_, err = f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 3, 5)}, sale.PaymentCash)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	_, err = f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 2, 5)}, sale.PaymentCash)
	assert.NoError(t, err)
}

func TestRecordSalePostsToOpenSession(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	session, err := f.cashier.OpenSession(f.ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	s, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 2, 25)}, sale.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, session.ID, s.SessionID)

	updated, err := f.cashier.GetSession(f.ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, updated.TotalSales.Equal(decimal.NewFromInt(50)))
	assert.True(t, updated.CashSales.Equal(decimal.NewFromInt(50)))
	// Venda em dinheiro entra no saldo esperado
	assert.True(t, updated.ExpectedAmount.Equal(decimal.NewFromInt(150)))

	movements, err := f.cashier.ListMovements(f.ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, s.ID, movements[0].ReferenceID)
}

func TestRecordSaleCardDoesNotAffectExpectedAmount(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	session, err := f.cashier.OpenSession(f.ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 2, 25)}, sale.PaymentCard)
	require.NoError(t, err)

	updated, err := f.cashier.GetSession(f.ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, updated.CardSales.Equal(decimal.NewFromInt(50)))
	assert.True(t, updated.CashSales.IsZero())
	// Cartão não passa pela gaveta
	assert.True(t, updated.ExpectedAmount.Equal(decimal.NewFromInt(100)))
}

func TestRecordSaleWithoutSession(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	s, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 1, 5)}, sale.PaymentCash)
	require.NoError(t, err)
	assert.Empty(t, s.SessionID)

	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 9, stock.Quantity)
}

func TestRecordSaleValidation(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1", nil, sale.PaymentCash)
	assert.ErrorIs(t, err, sale.ErrNoItems)

	_, err = f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 0, 5)}, sale.PaymentCash)
	assert.ErrorIs(t, err, sale.ErrInvalidQuantity)

	_, err = f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 1, 5)}, sale.PaymentMethod("cheque"))
	assert.ErrorIs(t, err, sale.ErrInvalidPayment)
}

func TestSaleNumbersAreSequentialPerBranch(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)
	f.seedStock(t, "prod-a", "branch-2", 10)

	first, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 1, 5)}, sale.PaymentCash)
	require.NoError(t, err)
	second, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 1, 5)}, sale.PaymentCash)
	require.NoError(t, err)
	other, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-2",
		[]sale.Item{saleItem("prod-a", 1, 5)}, sale.PaymentCash)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, 1, other.Number)
}

func TestConcurrentSalesLastUnit(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
				[]sale.Item{saleItem("prod-a", 1, 5)}, sale.PaymentCash)
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, product.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, succeeded)

	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stock.Quantity)
}

func TestGetSale(t *testing.T) {
	f := newSaleFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	created, err := f.sales.RecordSale(f.ctx, "tenant-1", "branch-1",
		[]sale.Item{saleItem("prod-a", 2, 5)}, sale.PaymentDigital)
	require.NoError(t, err)

	found, err := f.sales.GetSale(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Number, found.Number)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Items[0].Subtotal.Equal(decimal.NewFromInt(10)))

	_, err = f.sales.GetSale(f.ctx, "venda-inexistente")
	assert.ErrorIs(t, err, sale.ErrNotFound)
}
