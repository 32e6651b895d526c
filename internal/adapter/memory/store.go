// Package memory fornece uma implementação em memória dos repositórios de
// domínio, com as mesmas regras de atomicidade e validação da implementação
// PostgreSQL. Um único mutex cobre todos os dados, de modo que operações
// multi-entidade (venda com baixa de estoque e lançamento de caixa, por
// exemplo) executam como unidades atômicas também aqui. Usada em testes e
// em execução standalone sem banco.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/reservation"
	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
)

// Store guarda todo o estado em memória. Os repositórios tipados devolvidos
// pelos métodos de acesso compartilham o mesmo mutex.
type Store struct {
	mu sync.Mutex

	products       map[string]*product.Product
	stocks         map[string]*product.BranchStock
	stockMovements []product.StockMovement

	sessions      map[string]*cashier.Session
	cashMovements []cashier.Movement
	reports       map[string]*cashier.ClosureReport

	sales        map[string]*sale.Sale
	saleCounters map[string]int

	reservations        map[string]*reservation.Reservation
	deposits            map[string]*reservation.Deposit
	reservationCounters map[string]int
}

// NewStore cria um Store vazio
func NewStore() *Store {
	return &Store{
		products:            make(map[string]*product.Product),
		stocks:              make(map[string]*product.BranchStock),
		sessions:            make(map[string]*cashier.Session),
		reports:             make(map[string]*cashier.ClosureReport),
		sales:               make(map[string]*sale.Sale),
		saleCounters:        make(map[string]int),
		reservations:        make(map[string]*reservation.Reservation),
		deposits:            make(map[string]*reservation.Deposit),
		reservationCounters: make(map[string]int),
	}
}

// Products devolve a visão product.Repository do Store
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{store: s}
}

// Stock devolve a visão product.StockRepository do Store
func (s *Store) Stock() *StockRepository {
	return &StockRepository{store: s}
}

// Sessions devolve a visão cashier.SessionRepository do Store
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{store: s}
}

// CashMovements devolve a visão cashier.MovementRepository do Store
func (s *Store) CashMovements() *MovementRepository {
	return &MovementRepository{store: s}
}

// Sales devolve a visão sale.Repository do Store
func (s *Store) Sales() *SaleRepository {
	return &SaleRepository{store: s}
}

// Reservations devolve a visão reservation.Repository do Store
func (s *Store) Reservations() *ReservationRepository {
	return &ReservationRepository{store: s}
}

func stockKey(branchID, productID string) string {
	return branchID + "/" + productID
}

func counterKey(branchID string, at time.Time) string {
	return fmt.Sprintf("%s/%s", branchID, at.UTC().Format("2006-01-02"))
}

// stockOrZero devolve o registro de estoque existente ou um registro zerado
// fora do mapa. A fase de validação lê por aqui sem criar a linha: uma
// operação rejeitada não deixa registro fantasma. A linha só passa a existir
// quando a fase de gravação chama putStock. Chamador deve segurar o mutex.
func (s *Store) stockOrZero(tenantID, productID, branchID string) *product.BranchStock {
	if stock, ok := s.stocks[stockKey(branchID, productID)]; ok {
		return stock
	}

	return &product.BranchStock{
		TenantID:  tenantID,
		BranchID:  branchID,
		ProductID: productID,
	}
}

// putStock grava o registro no mapa, o equivalente do INSERT ... ON CONFLICT
// do adaptador PostgreSQL. Idempotente para linhas já existentes. Chamador
// deve segurar o mutex.
func (s *Store) putStock(stock *product.BranchStock) {
	s.stocks[stockKey(stock.BranchID, stock.ProductID)] = stock
}

func cloneStock(stock *product.BranchStock) *product.BranchStock {
	clone := *stock
	return &clone
}

func cloneSession(session *cashier.Session) *cashier.Session {
	clone := *session
	if session.CountedAmount != nil {
		counted := *session.CountedAmount
		clone.CountedAmount = &counted
	}
	if session.Difference != nil {
		difference := *session.Difference
		clone.Difference = &difference
	}
	if session.CloseTime != nil {
		closeTime := *session.CloseTime
		clone.CloseTime = &closeTime
	}
	return &clone
}

func cloneSale(s *sale.Sale) *sale.Sale {
	clone := *s
	clone.Items = append([]sale.Item(nil), s.Items...)
	return &clone
}

func cloneReservation(r *reservation.Reservation) *reservation.Reservation {
	clone := *r
	clone.Items = append([]reservation.Item(nil), r.Items...)
	return &clone
}

func cloneReport(rep *cashier.ClosureReport) *cashier.ClosureReport {
	clone := *rep
	clone.Movements = append([]cashier.Movement(nil), rep.Movements...)
	return &clone
}
