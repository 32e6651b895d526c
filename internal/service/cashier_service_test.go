package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugohenrick/pdv-multiloja/internal/adapter/memory"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
	"github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

func newCashierService() *CashierService {
	store := memory.NewStore()
	return NewCashierService(store.Sessions(), store.CashMovements(), logger.NewNop())
}

func cashierContext() context.Context {
	return tenant.SetTenantIDContext(context.Background(), "tenant-1")
}

func TestOpenSession(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	session, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, cashier.StatusOpen, session.Status)
	assert.True(t, session.ExpectedAmount.Equal(decimal.NewFromInt(100)))

	found, err := svc.GetOpenSession(ctx, "branch-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)
}

func TestOpenSessionRejectsNegativeInitialAmount(t *testing.T) {
	svc := newCashierService()

	_, err := svc.OpenSession(cashierContext(), "tenant-1", "branch-1", "user-1", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, cashier.ErrInvalidAmount)
}

func TestOpenSessionRejectsSecondOpen(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	_, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = svc.OpenSession(ctx, "tenant-1", "branch-1", "user-2", decimal.NewFromInt(50))
	assert.ErrorIs(t, err, cashier.ErrSessionAlreadyOpen)

	// Outra filial não é afetada
	_, err = svc.OpenSession(ctx, "tenant-1", "branch-2", "user-2", decimal.NewFromInt(50))
	assert.NoError(t, err)
}

func TestConcurrentOpensSingleWinner(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
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
			assert.ErrorIs(t, err, cashier.ErrSessionAlreadyOpen)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestCloseSessionComputesDifference(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	session, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	// Suprimento de 50 e sangria de 30: esperado 100 + 50 - 30 = 120
	_, err = svc.RegisterMovement(ctx, "tenant-1", session.ID, decimal.NewFromInt(50), "suprimento")
	require.NoError(t, err)
	_, err = svc.RegisterMovement(ctx, "tenant-1", session.ID, decimal.NewFromInt(-30), "sangria")
	require.NoError(t, err)

	closed, report, err := svc.CloseSession(ctx, session.ID, decimal.NewFromInt(130))
	require.NoError(t, err)

	assert.Equal(t, cashier.StatusClosed, closed.Status)
	assert.True(t, report.ExpectedAmount.Equal(decimal.NewFromInt(120)),
		"esperado 120, obtido %s", report.ExpectedAmount)
	assert.True(t, report.Difference.Equal(decimal.NewFromInt(10)),
		"diferença esperada +10, obtida %s", report.Difference)
	assert.Len(t, report.Movements, 2)
}

func TestCloseSessionTwiceFails(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	session, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, _, err = svc.CloseSession(ctx, session.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, _, err = svc.CloseSession(ctx, session.ID, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, cashier.ErrSessionClosed)
}

func TestCloseSessionRejectsNegativeCount(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	session, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, _, err = svc.CloseSession(ctx, session.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, cashier.ErrInvalidAmount)
}

func TestRegisterMovementOnClosedSessionFails(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	session, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, _, err = svc.CloseSession(ctx, session.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = svc.RegisterMovement(ctx, "tenant-1", session.ID, decimal.NewFromInt(10), "suprimento")
	assert.ErrorIs(t, err, cashier.ErrSessionClosed)
}

func TestRegisterMovementValidation(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	session, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = svc.RegisterMovement(ctx, "tenant-1", session.ID, decimal.Zero, "nada")
	assert.ErrorIs(t, err, cashier.ErrInvalidAmount)

	_, err = svc.RegisterMovement(ctx, "tenant-1", session.ID, decimal.NewFromInt(10), "")
	assert.ErrorIs(t, err, cashier.ErrEmptyReason)

	_, err = svc.RegisterMovement(ctx, "tenant-1", "sessao-inexistente", decimal.NewFromInt(10), "suprimento")
	assert.ErrorIs(t, err, cashier.ErrSessionNotFound)
}

func TestMovementTypeInferredFromSign(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	session, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	supply, err := svc.RegisterMovement(ctx, "tenant-1", session.ID, decimal.NewFromInt(50), "troco")
	require.NoError(t, err)
	assert.Equal(t, cashier.MovementSupply, supply.Type)

	withdrawal, err := svc.RegisterMovement(ctx, "tenant-1", session.ID, decimal.NewFromInt(-20), "malote")
	require.NoError(t, err)
	assert.Equal(t, cashier.MovementWithdrawal, withdrawal.Type)

	movements, err := svc.ListMovements(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, cashier.MovementSupply, movements[0].Type)
	assert.Equal(t, cashier.MovementWithdrawal, movements[1].Type)
}

func TestClosureReportIsRetrievable(t *testing.T) {
	ctx := cashierContext()
	svc := newCashierService()

	session, err := svc.OpenSession(ctx, "tenant-1", "branch-1", "user-1", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, _, err = svc.CloseSession(ctx, session.ID, decimal.NewFromInt(90))
	require.NoError(t, err)

	report, err := svc.GetClosureReport(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, report.SessionID)
	assert.True(t, report.Difference.Equal(decimal.NewFromInt(-10)))

	_, err = svc.GetClosureReport(ctx, "sessao-inexistente")
	assert.ErrorIs(t, err, cashier.ErrReportNotFound)
}
