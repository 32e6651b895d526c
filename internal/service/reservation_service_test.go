package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/memory"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/reservation"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
	"github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

type reservationFixture struct {
	store        *memory.Store
	reservations *ReservationService
	cashier      *CashierService
	ctx          context.Context
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewNop()

	sales := NewSaleService(store.Sales(), store.Sessions(), log)

	return &reservationFixture{
		store: store,
		reservations: NewReservationService(
			store.Reservations(),
			store.Stock(),
			sales,
			store.Sessions(),
			store.CashMovements(),
			log,
		),
		cashier: NewCashierService(store.Sessions(), store.CashMovements(), log),
		ctx:     tenant.SetTenantIDContext(context.Background(), "tenant-1"),
	}
}

func (f *reservationFixture) seedStock(t *testing.T, productID, branchID string, quantity int) {
	t.Helper()
	_, err := f.store.Stock().Adjust(f.ctx, productID, branchID, quantity, "carga inicial")
	require.NoError(t, err)
}

func reservationItem(productID string, quantity int, unitPrice int64) reservation.Item {
	return reservation.Item{
		ProductID:   productID,
		Description: "Produto " + productID,
		Quantity:    quantity,
		UnitPrice:   decimal.NewFromInt(unitPrice),
	}
}

func TestCreateReservationReservesStock(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "11999990000",
		[]reservation.Item{reservationItem("prod-a", 4, 25)},
		time.Now().Add(48*time.Hour), decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, reservation.StatusPending, res.Status)
	assert.Equal(t, 1, res.Number)

	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 10, stock.Quantity)
	assert.Equal(t, 4, stock.Reserved)
	assert.Equal(t, 6, stock.Available())
}

func TestCreateReservationInsufficientStock(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 3)

	_, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 4, 25)},
		time.Now().Add(48*time.Hour), decimal.Zero)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stock.Reserved)
}

func TestCreateReservationValidation(t *testing.T) {
	f := newReservationFixture(t)

	_, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		nil, time.Now().Add(time.Hour), decimal.Zero)
	assert.ErrorIs(t, err, reservation.ErrNoItems)

	_, err = f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 1, 10)},
		time.Now().Add(-time.Hour), decimal.Zero)
	assert.ErrorIs(t, err, reservation.ErrInvalidExpiry)

	_, err = f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 1, 10)},
		time.Now().Add(time.Hour), decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, reservation.ErrInvalidDeposit)
}

func TestCreateReservationWithDepositPostsMovement(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	session, err := f.cashier.OpenSession(f.ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 2, 50)},
		time.Now().Add(48*time.Hour), decimal.NewFromInt(30))
	require.NoError(t, err)

	dep, err := f.reservations.GetDeposit(f.ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.DepositActive, dep.Status)
	assert.True(t, dep.Amount.Equal(decimal.NewFromInt(30)))

	// O sinal entra no saldo esperado da sessão aberta
	updated, err := f.cashier.GetSession(f.ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, updated.ExpectedAmount.Equal(decimal.NewFromInt(130)))

	movements, err := f.cashier.ListMovements(f.ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, cashier.MovementDeposit, movements[0].Type)
	assert.Equal(t, res.ID, movements[0].ReferenceID)
}

func TestCancelReservationRestoresStock(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 4, 25)},
		time.Now().Add(48*time.Hour), decimal.Zero)
	require.NoError(t, err)

	cancelled, err := f.reservations.Cancel(f.ctx, res.ID, "cliente desistiu")
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, cancelled.Status)
	assert.Equal(t, "cliente desistiu", cancelled.CancelReason)

	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 10, stock.Quantity)
	assert.Equal(t, 0, stock.Reserved)
}

func TestCancelReservationRefundsDeposit(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	session, err := f.cashier.OpenSession(f.ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 2, 50)},
		time.Now().Add(48*time.Hour), decimal.NewFromInt(30))
	require.NoError(t, err)

	_, err = f.reservations.Cancel(f.ctx, res.ID, "desistência")
	require.NoError(t, err)

	dep, err := f.reservations.GetDeposit(f.ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.DepositRefunded, dep.Status)

	// Entrada de 30 e estorno de 30: saldo esperado volta a 100
	updated, err := f.cashier.GetSession(f.ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, updated.ExpectedAmount.Equal(decimal.NewFromInt(100)))
}

func TestCancelNonPendingReservationFails(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 2, 25)},
		time.Now().Add(48*time.Hour), decimal.Zero)
	require.NoError(t, err)

	_, err = f.reservations.Cancel(f.ctx, res.ID, "primeira vez")
	require.NoError(t, err)

	_, err = f.reservations.Cancel(f.ctx, res.ID, "segunda vez")
	assert.ErrorIs(t, err, reservation.ErrInvalidState)

	// O estoque não pode ser liberado duas vezes
	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stock.Reserved)
	assert.Equal(t, 10, stock.Quantity)
}

func TestCompleteReservationCommitsStockAndCreatesSale(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 4, 25)},
		time.Now().Add(48*time.Hour), decimal.Zero)
	require.NoError(t, err)

	completed, linkedSale, err := f.reservations.Complete(f.ctx, res.ID, sale.PaymentCash)
	require.NoError(t, err)

	assert.Equal(t, reservation.StatusCompleted, completed.Status)
	assert.Equal(t, linkedSale.ID, completed.SaleID)
	assert.Equal(t, res.ID, linkedSale.ReservationID)
	assert.True(t, linkedSale.Total.Equal(decimal.NewFromInt(100)))

	// Baixa única: físico 6, reservado 0
	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 6, stock.Quantity)
	assert.Equal(t, 0, stock.Reserved)
}

func TestCompleteReservationConvertsDeposit(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 2, 50)},
		time.Now().Add(48*time.Hour), decimal.NewFromInt(30))
	require.NoError(t, err)

	_, _, err = f.reservations.Complete(f.ctx, res.ID, sale.PaymentCash)
	require.NoError(t, err)

	dep, err := f.reservations.GetDeposit(f.ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.DepositConverted, dep.Status)
}

func TestCompleteReservationPostsSaleToSession(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	session, err := f.cashier.OpenSession(f.ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 4, 25)},
		time.Now().Add(48*time.Hour), decimal.Zero)
	require.NoError(t, err)

	_, linkedSale, err := f.reservations.Complete(f.ctx, res.ID, sale.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, session.ID, linkedSale.SessionID)

	updated, err := f.cashier.GetSession(f.ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, updated.TotalSales.Equal(decimal.NewFromInt(100)))
	assert.True(t, updated.ExpectedAmount.Equal(decimal.NewFromInt(200)))
}

func TestCompleteNonPendingReservationFails(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 2, 25)},
		time.Now().Add(48*time.Hour), decimal.Zero)
	require.NoError(t, err)

	_, err = f.reservations.Cancel(f.ctx, res.ID, "desistência")
	require.NoError(t, err)

	_, _, err = f.reservations.Complete(f.ctx, res.ID, sale.PaymentCash)
	assert.ErrorIs(t, err, reservation.ErrInvalidState)

	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 10, stock.Quantity)
}

func TestExpireDueSweep(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	res, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 4, 25)},
		time.Now().Add(time.Minute), decimal.Zero)
	require.NoError(t, err)

	// Ainda não venceu
	count, err := f.reservations.ExpireDue(f.ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = f.reservations.ExpireDue(f.ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expired, err := f.reservations.GetReservation(f.ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusExpired, expired.Status)

	stock, err := f.store.Stock().FindStock(f.ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stock.Reserved)
	assert.Equal(t, 10, stock.Quantity)

	// Varredura repetida não encontra nada
	count, err = f.reservations.ExpireDue(f.ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReservationNumbersSequentialPerBranch(t *testing.T) {
	f := newReservationFixture(t)
	f.seedStock(t, "prod-a", "branch-1", 10)

	first, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "Maria", "",
		[]reservation.Item{reservationItem("prod-a", 1, 10)},
		time.Now().Add(time.Hour), decimal.Zero)
	require.NoError(t, err)

	second, err := f.reservations.Create(f.ctx, "tenant-1", "branch-1", "João", "",
		[]reservation.Item{reservationItem("prod-a", 1, 10)},
		time.Now().Add(time.Hour), decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)
}
