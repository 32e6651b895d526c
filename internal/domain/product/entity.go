package product

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTenantID     = errors.New("ID do tenant não pode ser vazio")
	ErrEmptySKU          = errors.New("SKU não pode ser vazio")
	ErrEmptyName         = errors.New("nome não pode ser vazio")
	ErrNotFound          = errors.New("produto não encontrado")
	ErrStockNotFound     = errors.New("registro de estoque não encontrado")
	ErrInvalidQuantity   = errors.New("quantidade inválida")
	ErrInsufficientStock = errors.New("estoque insuficiente")
)

// Product representa um produto vendável do catálogo
type Product struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	SKU         string          `json:"sku"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewProduct cria um novo produto
func NewProduct(tenantID, sku, name, unit string, sellPrice decimal.Decimal) (*Product, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}

	if sku == "" {
		return nil, ErrEmptySKU
	}

	if name == "" {
		return nil, ErrEmptyName
	}

	return &Product{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		SKU:       sku,
		Name:      name,
		Unit:      unit,
		SellPrice: sellPrice,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// BranchStock representa o estoque de um produto em uma filial.
// Invariante: 0 <= Reserved <= Quantity em todo ponto de quiescência.
type BranchStock struct {
	TenantID  string    `json:"tenant_id"`
	BranchID  string    `json:"branch_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Reserved  int       `json:"reserved"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available retorna o estoque disponível (físico menos reservado)
func (s *BranchStock) Available() int {
	return s.Quantity - s.Reserved
}

// StockLine identifica uma quantidade de um produto em uma filial
type StockLine struct {
	ProductID string `json:"product_id"`
	BranchID  string `json:"branch_id"`
	Quantity  int    `json:"quantity"`
}

// ValidateLines verifica se todas as linhas possuem quantidade positiva
func ValidateLines(lines []StockLine) error {
	if len(lines) == 0 {
		return ErrInvalidQuantity
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: produto %s filial %s quantidade %d",
				ErrInvalidQuantity, line.ProductID, line.BranchID, line.Quantity)
		}
		if line.ProductID == "" || line.BranchID == "" {
			return fmt.Errorf("%w: produto e filial são obrigatórios", ErrInvalidQuantity)
		}
	}

	return nil
}

// MergeLines agrega linhas repetidas do mesmo (produto, filial) somando as
// quantidades e devolve o resultado em ordem determinística de
// (produto, filial). A validação de disponibilidade enxerga o total pedido
// de cada par, nunca parcelas isoladas.
func MergeLines(lines []StockLine) []StockLine {
	type key struct {
		productID string
		branchID  string
	}

	merged := make([]StockLine, 0, len(lines))
	index := make(map[key]int, len(lines))
	for _, line := range lines {
		k := key{line.ProductID, line.BranchID}
		if i, ok := index[k]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, line)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].ProductID != merged[j].ProductID {
			return merged[i].ProductID < merged[j].ProductID
		}
		return merged[i].BranchID < merged[j].BranchID
	})

	return merged
}

// MovementType representa o tipo de movimentação de estoque
type MovementType string

const (
	MovementAdjust   MovementType = "adjust"
	MovementReserve  MovementType = "reserve"
	MovementRelease  MovementType = "release"
	MovementCommit   MovementType = "commit"
	MovementSale     MovementType = "sale"
	MovementTransfer MovementType = "transfer"
)

// StockMovement registra cada alteração de estoque de um produto em uma filial.
// Registros são imutáveis após a gravação.
type StockMovement struct {
	ID               string       `json:"id"`
	TenantID         string       `json:"tenant_id"`
	BranchID         string       `json:"branch_id"`
	ProductID        string       `json:"product_id"`
	Type             MovementType `json:"type"`
	Quantity         int          `json:"quantity"`
	PreviousQuantity int          `json:"previous_quantity"`
	NewQuantity      int          `json:"new_quantity"`
	ReferenceID      string       `json:"reference_id,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Shortage descreve uma linha cuja quantidade solicitada excede o disponível
type Shortage struct {
	ProductID string `json:"product_id"`
	BranchID  string `json:"branch_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError nomeia todas as linhas que falharam a validação
// de estoque. Desembrulha para ErrInsufficientStock.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("produto %s filial %s: solicitado %d, disponível %d",
			s.ProductID, s.BranchID, s.Requested, s.Available))
	}
	return "estoque insuficiente: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
