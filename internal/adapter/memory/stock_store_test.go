package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

func testContext() context.Context {
	return tenant.SetTenantIDContext(context.Background(), "tenant-1")
}

func TestAdjustCreatesStockRow(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	result, err := stock.Adjust(ctx, "prod-a", "branch-1", 10, "carga inicial")
	require.NoError(t, err)
	assert.Equal(t, 10, result.Quantity)
	assert.Equal(t, 0, result.Reserved)
	assert.Equal(t, "tenant-1", result.TenantID)

	found, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 10, found.Quantity)
}

func TestAdjustRejectsNegativeResult(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 5, "")
	require.NoError(t, err)

	_, err = stock.Adjust(ctx, "prod-a", "branch-1", -8, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	// Falha não pode deixar efeito parcial
	found, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 5, found.Quantity)
}

func TestAdjustRejectsBelowReserved(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 10, "")
	require.NoError(t, err)

	err = stock.Reserve(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 4},
	}, "res-1")
	require.NoError(t, err)

	// Reduzir abaixo do reservado quebraria disponível >= 0
	_, err = stock.Adjust(ctx, "prod-a", "branch-1", -7, "")
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	_, err = stock.Adjust(ctx, "prod-a", "branch-1", -6, "")
	require.NoError(t, err)
}

func TestReserveFailsWhenAvailableInsufficient(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 10, "")
	require.NoError(t, err)

	err = stock.Reserve(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 4},
	}, "res-1")
	require.NoError(t, err)

	// Disponível agora é 6; reservar 7 falha nomeando a linha
	err = stock.Reserve(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 7},
	}, "res-2")
	require.Error(t, err)

	var insufficient *product.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	require.Len(t, insufficient.Shortages, 1)
	assert.Equal(t, "prod-a", insufficient.Shortages[0].ProductID)
	assert.Equal(t, 7, insufficient.Shortages[0].Requested)
	assert.Equal(t, 6, insufficient.Shortages[0].Available)

	found, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 4, found.Reserved)
}

func TestReserveMultiLineAllOrNothing(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 10, "")
	require.NoError(t, err)
	_, err = stock.Adjust(ctx, "prod-b", "branch-1", 2, "")
	require.NoError(t, err)

	err = stock.Reserve(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 5},
		{ProductID: "prod-b", BranchID: "branch-1", Quantity: 3},
	}, "res-1")
	require.Error(t, err)

	var insufficient *product.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	require.Len(t, insufficient.Shortages, 1)
	assert.Equal(t, "prod-b", insufficient.Shortages[0].ProductID)

	// Nenhuma linha pode ter sido reservada
	found, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 0, found.Reserved)
}

func TestReleaseFloorsAtZeroAndSkipsMissing(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 10, "")
	require.NoError(t, err)

	err = stock.Reserve(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 3},
	}, "res-1")
	require.NoError(t, err)

	// Liberar mais do que o reservado e uma linha inexistente: sem erro
	err = stock.Release(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 5},
		{ProductID: "prod-x", BranchID: "branch-1", Quantity: 2},
	}, "res-1")
	require.NoError(t, err)

	found, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 0, found.Reserved)
	assert.Equal(t, 10, found.Quantity)
}

func TestCommitDecrementsPhysicalAndReserved(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 10, "")
	require.NoError(t, err)

	lines := []product.StockLine{{ProductID: "prod-a", BranchID: "branch-1", Quantity: 4}}
	require.NoError(t, stock.Reserve(ctx, lines, "res-1"))
	require.NoError(t, stock.Commit(ctx, lines, "res-1"))

	found, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 6, found.Quantity)
	assert.Equal(t, 0, found.Reserved)
}

func TestCommitRevalidatesPhysicalStock(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 10, "")
	require.NoError(t, err)

	lines := []product.StockLine{{ProductID: "prod-a", BranchID: "branch-1", Quantity: 8}}
	require.NoError(t, stock.Reserve(ctx, lines, "res-1"))

	// Ajuste direto entre a reserva e a baixa: quantidade cai para o
	// reservado e a baixa continua válida; um commit maior que o físico
	// precisa falhar
	_, err = stock.Adjust(ctx, "prod-a", "branch-1", -2, "")
	require.NoError(t, err)

	err = stock.Commit(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 9},
	}, "res-1")
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	require.NoError(t, stock.Commit(ctx, lines, "res-1"))
}

func TestBatchAdjustTransferBetweenBranches(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 10, "")
	require.NoError(t, err)

	err = stock.BatchAdjust(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: -5},
		{ProductID: "prod-a", BranchID: "branch-2", Quantity: 5},
	}, "transfer-1")
	require.NoError(t, err)

	origin, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 5, origin.Quantity)

	destination, err := stock.FindStock(ctx, "prod-a", "branch-2")
	require.NoError(t, err)
	assert.Equal(t, 5, destination.Quantity)

	movements, err := stock.ListMovements(ctx, "prod-a", "branch-2", 10, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, product.MovementTransfer, movements[0].Type)
	assert.Equal(t, "transfer-1", movements[0].ReferenceID)
}

func TestBatchAdjustAtomicOnFailure(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 3, "")
	require.NoError(t, err)

	// O débito excede o estoque da origem: nada pode ser aplicado
	err = stock.BatchAdjust(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: -5},
		{ProductID: "prod-a", BranchID: "branch-2", Quantity: 5},
	}, "transfer-1")
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	origin, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 3, origin.Quantity)

	_, err = stock.FindStock(ctx, "prod-a", "branch-2")
	assert.ErrorIs(t, err, product.ErrStockNotFound)
}

func TestReserveAggregatesDuplicateLines(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 5, "")
	require.NoError(t, err)

	// Duas parcelas da mesma linha pedem 6 no total; disponível é 5
	err = stock.Reserve(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 3},
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 3},
	}, "res-1")
	require.Error(t, err)

	var insufficient *product.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	require.Len(t, insufficient.Shortages, 1)
	assert.Equal(t, 6, insufficient.Shortages[0].Requested)
	assert.Equal(t, 5, insufficient.Shortages[0].Available)

	found, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 0, found.Reserved)

	// Com estoque suficiente as parcelas somam em uma única reserva
	_, err = stock.Adjust(ctx, "prod-a", "branch-1", 1, "")
	require.NoError(t, err)

	err = stock.Reserve(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 3},
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 3},
	}, "res-2")
	require.NoError(t, err)

	found, err = stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 6, found.Quantity)
	assert.Equal(t, 6, found.Reserved)
}

func TestBatchAdjustAggregatesDuplicateDeltas(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 3, "")
	require.NoError(t, err)

	// Débitos parcelados da mesma linha somam 4 e excedem o estoque
	err = stock.BatchAdjust(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: -2},
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: -2},
	}, "")
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	found, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 3, found.Quantity)

	// Parcelas que cabem no estoque aplicam como um único delta
	err = stock.BatchAdjust(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: -1},
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: -2},
	}, "")
	require.NoError(t, err)

	found, err = stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 0, found.Quantity)
}

func TestFailedReserveLeavesNoStockRow(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	err := stock.Reserve(ctx, []product.StockLine{
		{ProductID: "prod-a", BranchID: "branch-1", Quantity: 1},
	}, "res-1")
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	// Validação rejeitada não pode criar registro zerado
	_, err = stock.FindStock(ctx, "prod-a", "branch-1")
	assert.ErrorIs(t, err, product.ErrStockNotFound)
}

func TestConcurrentReservesSingleUnit(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 1, "")
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- stock.Reserve(ctx, []product.StockLine{
				{ProductID: "prod-a", BranchID: "branch-1", Quantity: 1},
			}, "res")
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

	found, err := stock.FindStock(ctx, "prod-a", "branch-1")
	require.NoError(t, err)
	assert.Equal(t, 1, found.Reserved)
}

func TestMovementAuditTrail(t *testing.T) {
	ctx := testContext()
	stock := NewStore().Stock()

	_, err := stock.Adjust(ctx, "prod-a", "branch-1", 10, "carga inicial")
	require.NoError(t, err)

	lines := []product.StockLine{{ProductID: "prod-a", BranchID: "branch-1", Quantity: 4}}
	require.NoError(t, stock.Reserve(ctx, lines, "res-1"))
	require.NoError(t, stock.Commit(ctx, lines, "res-1"))

	movements, err := stock.ListMovements(ctx, "prod-a", "branch-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, movements, 3)

	// Mais recente primeiro
	assert.Equal(t, product.MovementCommit, movements[0].Type)
	assert.Equal(t, product.MovementReserve, movements[1].Type)
	assert.Equal(t, product.MovementAdjust, movements[2].Type)
	assert.Equal(t, 10, movements[0].PreviousQuantity)
	assert.Equal(t, 6, movements[0].NewQuantity)
}
