package service

import (
	"context"
	"errors"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// SaleService coordena o registro de vendas: resolve a sessão de caixa
// aberta da filial antes da transação e delega ao repositório a unidade
// atômica venda + baixa de estoque + lançamento na sessão.
type SaleService struct {
	sales    sale.Repository
	sessions cashier.SessionRepository
	logger   logger.Logger
}

// NewSaleService cria uma nova instância de SaleService
func NewSaleService(sales sale.Repository, sessions cashier.SessionRepository, logger logger.Logger) *SaleService {
	return &SaleService{
		sales:    sales,
		sessions: sessions,
		logger:   logger,
	}
}

// RecordSale registra uma venda: valida os itens, resolve a sessão aberta da
// filial e persiste a venda com baixa de estoque como uma única transação.
// Falha com InsufficientStockError se alguma linha não tiver disponível.
func (s *SaleService) RecordSale(ctx context.Context, tenantID, branchID string, items []sale.Item, method sale.PaymentMethod) (*sale.Sale, error) {
	newSale, err := sale.NewSale(tenantID, branchID, items, method)
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, newSale); err != nil {
		return nil, err
	}

	return newSale, nil
}

// record resolve a sessão e persiste a venda. Terminais sem sessão de caixa
// são suportados: a venda é confirmada sem vínculo e a lacuna é registrada
// para conciliação posterior.
func (s *SaleService) record(ctx context.Context, newSale *sale.Sale) error {
	session, err := s.sessions.FindOpenByBranch(ctx, newSale.BranchID)
	if err != nil {
		if !errors.Is(err, cashier.ErrSessionNotFound) {
			return err
		}
		s.logger.Debug("venda sem sessão de caixa aberta", "branch_id", newSale.BranchID)
	} else {
		newSale.SessionID = session.ID
	}

	hadSession := newSale.SessionID != ""

	if err := s.sales.Create(ctx, newSale); err != nil {
		return err
	}

	if hadSession && newSale.SessionID == "" {
		// A sessão fechou entre a resolução e o commit; a venda foi
		// confirmada sem vínculo e precisa entrar na conciliação manual.
		s.logger.Warn("sessão fechada durante o registro da venda",
			"sale_id", newSale.ID,
			"branch_id", newSale.BranchID)
	}

	s.logger.Info("venda registrada",
		"sale_id", newSale.ID,
		"branch_id", newSale.BranchID,
		"number", newSale.Number,
		"total", newSale.Total.String(),
		"payment_method", string(newSale.PaymentMethod))

	return nil
}

// GetSale busca uma venda pelo ID
func (s *SaleService) GetSale(ctx context.Context, id string) (*sale.Sale, error) {
	return s.sales.FindByID(ctx, id)
}

// ListSales retorna as vendas de uma filial, da mais recente para a mais
// antiga
func (s *SaleService) ListSales(ctx context.Context, branchID string, limit, offset int) ([]*sale.Sale, error) {
	return s.sales.ListByBranch(ctx, branchID, limit, offset)
}
