package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/reservation"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
	"github.com/hugohenrick/pdv-multiloja/pkg/logger"
)

// ReservationService coordena o ciclo de vida das reservas: criação com
// reserva de estoque, cancelamento com liberação, conclusão com baixa e
// venda vinculada, e a varredura de expiração.
type ReservationService struct {
	reservations reservation.Repository
	stock        product.StockRepository
	sales        *SaleService
	sessions     cashier.SessionRepository
	movements    cashier.MovementRepository
	logger       logger.Logger
}

// NewReservationService cria uma nova instância de ReservationService
func NewReservationService(
	reservations reservation.Repository,
	stock product.StockRepository,
	sales *SaleService,
	sessions cashier.SessionRepository,
	movements cashier.MovementRepository,
	logger logger.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		stock:        stock,
		sales:        sales,
		sessions:     sessions,
		movements:    movements,
		logger:       logger,
	}
}

// Create cria uma reserva pendente: reserva o estoque de todos os itens e
// persiste a reserva (com o sinal, quando houver). Se a gravação falhar após
// a reserva de estoque, a reserva é desfeita por compensação.
func (s *ReservationService) Create(ctx context.Context, tenantID, branchID, customerName, customerPhone string, items []reservation.Item, expiryDate time.Time, depositAmount decimal.Decimal) (*reservation.Reservation, error) {
	res, err := reservation.NewReservation(tenantID, branchID, customerName, customerPhone, items, expiryDate, depositAmount)
	if err != nil {
		return nil, err
	}

	lines := res.StockLines()
	if err := s.stock.Reserve(ctx, lines, res.ID); err != nil {
		return nil, err
	}

	var dep *reservation.Deposit
	if res.HasDeposit() {
		dep = reservation.NewDeposit(tenantID, res.ID, depositAmount)
	}

	if err := s.reservations.Create(ctx, res, dep); err != nil {
		if relErr := s.stock.Release(ctx, lines, res.ID); relErr != nil {
			s.logger.Error("falha ao desfazer reserva de estoque após erro de gravação",
				"reservation_id", res.ID,
				"error", relErr)
		}
		return nil, err
	}

	if dep != nil {
		s.postDepositMovement(ctx, res, depositAmount,
			fmt.Sprintf("Sinal da reserva nº %d", res.Number))
	}

	s.logger.Info("reserva criada",
		"reservation_id", res.ID,
		"branch_id", branchID,
		"number", res.Number,
		"expiry_date", expiryDate)

	return res, nil
}

// Cancel cancela uma reserva pendente: transiciona o estado, libera o
// estoque reservado e estorna o sinal ativo, quando houver. A liberação de
// estoque e o estorno são de melhor esforço após a transição autoritativa.
func (s *ReservationService) Cancel(ctx context.Context, id, reason string) (*reservation.Reservation, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.reservations.MarkCancelled(ctx, id, reason); err != nil {
		return nil, err
	}

	if err := s.stock.Release(ctx, res.StockLines(), res.ID); err != nil {
		s.logger.Error("falha ao liberar estoque da reserva cancelada",
			"reservation_id", id,
			"error", err)
	}

	if res.HasDeposit() {
		if err := s.reservations.UpdateDepositStatus(ctx, id, reservation.DepositRefunded); err != nil {
			s.logger.Error("falha ao estornar sinal da reserva cancelada",
				"reservation_id", id,
				"error", err)
		} else {
			s.postDepositMovement(ctx, res, res.DepositAmount.Neg(),
				fmt.Sprintf("Estorno do sinal da reserva nº %d", res.Number))
		}
	}

	res.Status = reservation.StatusCancelled
	res.CancelReason = reason

	s.logger.Info("reserva cancelada", "reservation_id", id, "reason", reason)

	return res, nil
}

// Complete conclui uma reserva pendente: baixa o estoque reservado, registra
// a venda vinculada e converte o sinal. A baixa de estoque é validada antes
// de qualquer transição; se falhar, a reserva permanece pendente.
func (s *ReservationService) Complete(ctx context.Context, id string, method sale.PaymentMethod) (*reservation.Reservation, *sale.Sale, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !res.IsPending() {
		return nil, nil, reservation.ErrInvalidState
	}

	saleItems := make([]sale.Item, 0, len(res.Items))
	for _, item := range res.Items {
		saleItems = append(saleItems, sale.Item{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	newSale, err := sale.NewSale(res.TenantID, res.BranchID, saleItems, method)
	if err != nil {
		return nil, nil, err
	}
	newSale.ReservationID = res.ID

	if err := s.stock.Commit(ctx, res.StockLines(), res.ID); err != nil {
		return nil, nil, err
	}

	if err := s.sales.record(ctx, newSale); err != nil {
		return nil, nil, err
	}

	if err := s.reservations.MarkCompleted(ctx, id, newSale.ID); err != nil {
		return nil, nil, err
	}

	if res.HasDeposit() {
		if err := s.reservations.UpdateDepositStatus(ctx, id, reservation.DepositConverted); err != nil {
			s.logger.Error("falha ao converter sinal da reserva concluída",
				"reservation_id", id,
				"error", err)
		}
	}

	res.Status = reservation.StatusCompleted
	res.SaleID = newSale.ID

	s.logger.Info("reserva concluída",
		"reservation_id", id,
		"sale_id", newSale.ID,
		"total", newSale.Total.String())

	return res, newSale, nil
}

// ExpireDue varre as reservas pendentes vencidas: transiciona cada uma para
// expirada e libera o estoque reservado. Devolve quantas expiraram. Falhas
// individuais não interrompem a varredura.
func (s *ReservationService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.reservations.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, res := range expired {
		if err := s.reservations.MarkExpired(ctx, res.ID); err != nil {
			if errors.Is(err, reservation.ErrInvalidState) {
				// Outra varredura ou operação chegou primeiro
				continue
			}
			s.logger.Error("falha ao expirar reserva", "reservation_id", res.ID, "error", err)
			continue
		}

		if err := s.stock.Release(ctx, res.StockLines(), res.ID); err != nil {
			s.logger.Error("falha ao liberar estoque da reserva expirada",
				"reservation_id", res.ID,
				"error", err)
		}

		count++
	}

	if count > 0 {
		s.logger.Info("varredura de expiração concluída", "expired", count)
	}

	return count, nil
}

// GetReservation busca uma reserva pelo ID
func (s *ReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.reservations.FindByID(ctx, id)
}

// ListReservations retorna as reservas de uma filial, opcionalmente
// filtradas por status
func (s *ReservationService) ListReservations(ctx context.Context, branchID string, status reservation.Status, limit, offset int) ([]*reservation.Reservation, error) {
	return s.reservations.ListByBranch(ctx, branchID, status, limit, offset)
}

// GetDeposit busca o sinal de uma reserva
func (s *ReservationService) GetDeposit(ctx context.Context, reservationID string) (*reservation.Deposit, error) {
	return s.reservations.FindDeposit(ctx, reservationID)
}

// postDepositMovement lança a entrada ou o estorno do sinal na sessão de
// caixa aberta da filial, quando houver. Melhor esforço: a ausência de
// sessão não impede a operação da reserva.
func (s *ReservationService) postDepositMovement(ctx context.Context, res *reservation.Reservation, amount decimal.Decimal, reason string) {
	session, err := s.sessions.FindOpenByBranch(ctx, res.BranchID)
	if err != nil {
		if !errors.Is(err, cashier.ErrSessionNotFound) {
			s.logger.Error("falha ao resolver sessão para o sinal da reserva",
				"reservation_id", res.ID,
				"error", err)
		}
		return
	}

	movement, err := cashier.NewDepositMovement(res.TenantID, session.ID, amount, res.ID, reason)
	if err != nil {
		s.logger.Error("falha ao montar movimentação do sinal",
			"reservation_id", res.ID,
			"error", err)
		return
	}

	if err := s.movements.Append(ctx, movement); err != nil {
		s.logger.Error("falha ao lançar sinal na sessão de caixa",
			"reservation_id", res.ID,
			"session_id", session.ID,
			"error", err)
	}
}
