package cashier

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTenantID      = errors.New("ID do tenant não pode ser vazio")
	ErrEmptyBranchID      = errors.New("ID da filial não pode ser vazio")
	ErrSessionNotFound    = errors.New("sessão de caixa não encontrada")
	ErrSessionAlreadyOpen = errors.New("já existe uma sessão de caixa aberta para esta filial")
	ErrSessionClosed      = errors.New("sessão de caixa já está fechada")
	ErrReportNotFound     = errors.New("relatório de fechamento não encontrado")
	ErrInvalidAmount      = errors.New("valor inválido")
	ErrEmptyReason        = errors.New("motivo da movimentação não pode ser vazio")
)

// Status representa o estado da sessão de caixa
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Session representa uma sessão de caixa: o período de trabalho entre a
// abertura (com fundo de troco) e o fechamento (com conferência).
// Invariante: no máximo uma sessão aberta por (tenant, filial).
type Session struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	BranchID      string          `json:"branch_id"`
	OpenedBy      string          `json:"opened_by"`
	Status        Status          `json:"status"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	// ExpectedAmount é o saldo contábil da sessão: fundo inicial, mais
	// movimentações manuais e sinais, mais a parcela em dinheiro das vendas.
	ExpectedAmount decimal.Decimal  `json:"expected_amount"`
	CountedAmount  *decimal.Decimal `json:"counted_amount,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	TotalSales     decimal.Decimal  `json:"total_sales"`
	CashSales      decimal.Decimal  `json:"cash_sales"`
	CardSales      decimal.Decimal  `json:"card_sales"`
	DigitalSales   decimal.Decimal  `json:"digital_sales"`
	OpenTime       time.Time        `json:"open_time"`
	CloseTime      *time.Time       `json:"close_time,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewSession cria uma nova sessão de caixa aberta
func NewSession(tenantID, branchID, openedBy string, initialAmount decimal.Decimal) (*Session, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}

	if branchID == "" {
		return nil, ErrEmptyBranchID
	}

	if initialAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Session{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		BranchID:       branchID,
		OpenedBy:       openedBy,
		Status:         StatusOpen,
		InitialAmount:  initialAmount,
		ExpectedAmount: initialAmount,
		TotalSales:     decimal.Zero,
		CashSales:      decimal.Zero,
		CardSales:      decimal.Zero,
		DigitalSales:   decimal.Zero,
		OpenTime:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsOpen verifica se a sessão está aberta
func (s *Session) IsOpen() bool {
	return s.Status == StatusOpen
}

// MovementType representa o tipo de movimentação de caixa
type MovementType string

const (
	// MovementSupply é um suprimento: entrada manual de dinheiro no caixa
	MovementSupply MovementType = "supply"
	// MovementWithdrawal é uma sangria: retirada manual de dinheiro do caixa
	MovementWithdrawal MovementType = "withdrawal"
	// MovementSale é o registro descritivo de uma venda; o valor já está
	// refletido nos contadores da sessão e não altera o saldo esperado
	MovementSale MovementType = "sale"
	// MovementDeposit é a entrada do sinal de uma reserva, acompanhada
	// à parte dos totais de venda
	MovementDeposit MovementType = "deposit"
)

// Movement é um lançamento imutável no razão da sessão de caixa.
// Movimentações nunca são editadas ou excluídas; correções são novos
// lançamentos de compensação.
type Movement struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	SessionID   string          `json:"session_id"`
	Type        MovementType    `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	ReferenceID string          `json:"reference_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewMovement cria uma movimentação manual. O sinal do valor determina o
// tipo: positivo é suprimento, negativo é sangria.
func NewMovement(tenantID, sessionID string, amount decimal.Decimal, reason string) (*Movement, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	if reason == "" {
		return nil, ErrEmptyReason
	}

	movementType := MovementSupply
	if amount.IsNegative() {
		movementType = MovementWithdrawal
	}

	return &Movement{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		SessionID: sessionID,
		Type:      movementType,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	}, nil
}

// NewDepositMovement cria a movimentação de entrada do sinal de uma reserva
func NewDepositMovement(tenantID, sessionID string, amount decimal.Decimal, reservationID, reason string) (*Movement, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	return &Movement{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		SessionID:   sessionID,
		Type:        MovementDeposit,
		Amount:      amount,
		Reason:      reason,
		ReferenceID: reservationID,
		CreatedAt:   time.Now(),
	}, nil
}

// AffectsExpected indica se a movimentação altera o saldo esperado da
// sessão. Movimentações de venda são descritivas: o valor entra pelos
// contadores de venda.
func (m *Movement) AffectsExpected() bool {
	return m.Type != MovementSale
}

// ClosureReport é o retrato imutável de uma sessão fechada com todo o seu
// histórico de movimentações: o fechamento de caixa (relatório Z).
type ClosureReport struct {
	ID             string          `json:"id"`
	TenantID       string          `json:"tenant_id"`
	SessionID      string          `json:"session_id"`
	BranchID       string          `json:"branch_id"`
	OpenedBy       string          `json:"opened_by"`
	InitialAmount  decimal.Decimal `json:"initial_amount"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	CountedAmount  decimal.Decimal `json:"counted_amount"`
	Difference     decimal.Decimal `json:"difference"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	CashSales      decimal.Decimal `json:"cash_sales"`
	CardSales      decimal.Decimal `json:"card_sales"`
	DigitalSales   decimal.Decimal `json:"digital_sales"`
	OpenTime       time.Time       `json:"open_time"`
	CloseTime      time.Time       `json:"close_time"`
	Movements      []Movement      `json:"movements"`
	CreatedAt      time.Time       `json:"created_at"`
}
