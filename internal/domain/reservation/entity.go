package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
)

var (
	ErrEmptyTenantID   = errors.New("ID do tenant não pode ser vazio")
	ErrEmptyBranchID   = errors.New("ID da filial não pode ser vazio")
	ErrNotFound        = errors.New("reserva não encontrada")
	ErrDepositNotFound = errors.New("sinal da reserva não encontrado")
	ErrNoItems         = errors.New("reserva deve possuir ao menos um item")
	ErrInvalidQuantity = errors.New("quantidade do item deve ser positiva")
	ErrInvalidExpiry   = errors.New("data de expiração deve ser futura")
	ErrInvalidDeposit  = errors.New("valor do sinal não pode ser negativo")
	ErrInvalidState    = errors.New("reserva não está no estado exigido pela operação")
)

// Status representa o estado da reserva. Transições permitidas:
// pending -> completed | cancelled | expired; estados terminais são finais.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// DepositStatus representa o estado do sinal pago na criação da reserva
type DepositStatus string

const (
	DepositActive    DepositStatus = "active"
	DepositConverted DepositStatus = "converted"
	DepositRefunded  DepositStatus = "refunded"
)

// Item é uma linha da reserva
type Item struct {
	ProductID   string          `json:"product_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Reservation representa um pedido de cliente que segura estoque até ser
// concluído, cancelado ou expirado.
type Reservation struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	BranchID      string          `json:"branch_id"`
	Number        int             `json:"number"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Items         []Item          `json:"items"`
	Status        Status          `json:"status"`
	ExpiryDate    time.Time       `json:"expiry_date"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	SaleID        string          `json:"sale_id,omitempty"`
	CancelReason  string          `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Deposit é o sinal pago na criação da reserva, acompanhado à parte dos
// totais de venda até a conclusão.
type Deposit struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	ReservationID string          `json:"reservation_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        DepositStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewReservation cria uma nova reserva pendente
func NewReservation(tenantID, branchID, customerName, customerPhone string, items []Item, expiryDate time.Time, depositAmount decimal.Decimal) (*Reservation, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}

	if branchID == "" {
		return nil, ErrEmptyBranchID
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	if !expiryDate.After(time.Now()) {
		return nil, ErrInvalidExpiry
	}

	if depositAmount.IsNegative() {
		return nil, ErrInvalidDeposit
	}

	now := time.Now()
	return &Reservation{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		BranchID:      branchID,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Items:         items,
		Status:        StatusPending,
		ExpiryDate:    expiryDate,
		DepositAmount: depositAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NewDeposit cria o registro do sinal de uma reserva
func NewDeposit(tenantID, reservationID string, amount decimal.Decimal) *Deposit {
	now := time.Now()
	return &Deposit{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		ReservationID: reservationID,
		Amount:        amount,
		Status:        DepositActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsPending verifica se a reserva ainda está pendente
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// HasDeposit verifica se a reserva foi criada com sinal
func (r *Reservation) HasDeposit() bool {
	return r.DepositAmount.IsPositive()
}

// StockLines converte os itens da reserva em linhas de estoque
func (r *Reservation) StockLines() []product.StockLine {
	lines := make([]product.StockLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, product.StockLine{
			ProductID: item.ProductID,
			BranchID:  r.BranchID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
