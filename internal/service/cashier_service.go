package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// CashierService coordena o ciclo de vida das sessões de caixa e o razão de
// movimentações. As garantias de atomicidade vivem nos repositórios; aqui
// ficam validação, resolução de sessão e log.
type CashierService struct {
	sessions  cashier.SessionRepository
	movements cashier.MovementRepository
	logger    logger.Logger
}

// NewCashierService cria uma nova instância de CashierService
func NewCashierService(sessions cashier.SessionRepository, movements cashier.MovementRepository, logger logger.Logger) *CashierService {
	return &CashierService{
		sessions:  sessions,
		movements: movements,
		logger:    logger,
	}
}

// OpenSession abre uma sessão de caixa para a filial. Falha com
// ErrSessionAlreadyOpen se a filial já possui sessão aberta.
func (s *CashierService) OpenSession(ctx context.Context, tenantID, branchID, openedBy string, initialAmount decimal.Decimal) (*cashier.Session, error) {
	session, err := cashier.NewSession(tenantID, branchID, openedBy, initialAmount)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Open(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("sessão de caixa aberta",
		"session_id", session.ID,
		"branch_id", branchID,
		"initial_amount", initialAmount.String())

	return session, nil
}

// CloseSession fecha a sessão, calcula a diferença entre o valor conferido e
// o esperado e devolve a sessão congelada com o relatório de fechamento.
func (s *CashierService) CloseSession(ctx context.Context, sessionID string, countedAmount decimal.Decimal) (*cashier.Session, *cashier.ClosureReport, error) {
	if countedAmount.IsNegative() {
		return nil, nil, cashier.ErrInvalidAmount
	}

	session, report, err := s.sessions.Close(ctx, sessionID, countedAmount, time.Now())
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("sessão de caixa fechada",
		"session_id", session.ID,
		"branch_id", session.BranchID,
		"expected_amount", report.ExpectedAmount.String(),
		"counted_amount", report.CountedAmount.String(),
		"difference", report.Difference.String())

	return session, report, nil
}

// GetSession busca uma sessão pelo ID
func (s *CashierService) GetSession(ctx context.Context, sessionID string) (*cashier.Session, error) {
	return s.sessions.FindByID(ctx, sessionID)
}

// GetOpenSession resolve a sessão aberta de uma filial
func (s *CashierService) GetOpenSession(ctx context.Context, branchID string) (*cashier.Session, error) {
	return s.sessions.FindOpenByBranch(ctx, branchID)
}

// ListSessions retorna as sessões de uma filial, da mais recente para a mais
// antiga
func (s *CashierService) ListSessions(ctx context.Context, branchID string, limit, offset int) ([]*cashier.Session, error) {
	return s.sessions.ListByBranch(ctx, branchID, limit, offset)
}

// GetClosureReport busca o relatório de fechamento de uma sessão
func (s *CashierService) GetClosureReport(ctx context.Context, sessionID string) (*cashier.ClosureReport, error) {
	return s.sessions.FindReport(ctx, sessionID)
}

// RegisterMovement registra uma movimentação manual na sessão. O sinal do
// valor determina o tipo: positivo é suprimento, negativo é sangria.
func (s *CashierService) RegisterMovement(ctx context.Context, tenantID, sessionID string, amount decimal.Decimal, reason string) (*cashier.Movement, error) {
	movement, err := cashier.NewMovement(tenantID, sessionID, amount, reason)
	if err != nil {
		return nil, err
	}

	if err := s.movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	s.logger.Info("movimentação de caixa registrada",
		"session_id", sessionID,
		"type", string(movement.Type),
		"amount", amount.String())

	return movement, nil
}

// ListMovements retorna as movimentações de uma sessão em ordem de criação
func (s *CashierService) ListMovements(ctx context.Context, sessionID string) ([]*cashier.Movement, error) {
	return s.movements.ListBySession(ctx, sessionID)
}
