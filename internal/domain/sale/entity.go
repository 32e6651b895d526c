package sale

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTenantID   = errors.New("ID do tenant não pode ser vazio")
	ErrEmptyBranchID   = errors.New("ID da filial não pode ser vazio")
	ErrNotFound        = errors.New("venda não encontrada")
	ErrNoItems         = errors.New("venda deve possuir ao menos um item")
	ErrInvalidQuantity = errors.New("quantidade do item deve ser positiva")
	ErrInvalidPayment  = errors.New("forma de pagamento inválida")
	ErrNegativePrice   = errors.New("preço unitário não pode ser negativo")
)

// PaymentMethod representa a forma de pagamento de uma venda
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
)

// Valid verifica se a forma de pagamento é conhecida
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentDigital:
		return true
	}
	return false
}

// Item é uma linha de venda
type Item struct {
	ProductID   string          `json:"product_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Sale representa uma venda concluída. Imutável após a criação.
type Sale struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	BranchID      string          `json:"branch_id"`
	SessionID     string          `json:"session_id,omitempty"`
	ReservationID string          `json:"reservation_id,omitempty"`
	Number        int             `json:"number"`
	Items         []Item          `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewSale cria uma nova venda, calculando subtotais e total a partir dos
// itens. O número sequencial é atribuído pelo repositório na gravação.
func NewSale(tenantID, branchID string, items []Item, method PaymentMethod) (*Sale, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}

	if branchID == "" {
		return nil, ErrEmptyBranchID
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}

	if !method.Valid() {
		return nil, ErrInvalidPayment
	}

	total := decimal.Zero
	for i := range items {
		if items[i].Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if items[i].UnitPrice.IsNegative() {
			return nil, ErrNegativePrice
		}
		items[i].Subtotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		total = total.Add(items[i].Subtotal)
	}

	return &Sale{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		BranchID:      branchID,
		Items:         items,
		Total:         total,
		PaymentMethod: method,
		CreatedAt:     time.Now(),
	}, nil
}

// CashAmount retorna a parcela em dinheiro da venda
func (s *Sale) CashAmount() decimal.Decimal {
	if s.PaymentMethod == PaymentCash {
		return s.Total
	}
	return decimal.Zero
}
