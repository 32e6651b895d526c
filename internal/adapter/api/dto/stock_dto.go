package dto

import (
	"time"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
)

// AdjustStockRequest representa a requisição de ajuste de estoque
type AdjustStockRequest struct {
	Delta int    `json:"delta" binding:"required"`
	Notes string `json:"notes"`
}

// StockLineRequest representa uma linha de estoque em operações em lote
type StockLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	BranchID  string `json:"branch_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// BatchAdjustRequest representa a requisição de ajuste em lote. As
// quantidades são deltas com sinal.
type BatchAdjustRequest struct {
	Lines       []StockLineRequest `json:"lines" binding:"required"`
	ReferenceID string             `json:"reference_id"`
}

// TransferStockRequest representa a transferência de estoque entre filiais
type TransferStockRequest struct {
	ProductID    string `json:"product_id" binding:"required"`
	FromBranchID string `json:"from_branch_id" binding:"required"`
	ToBranchID   string `json:"to_branch_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
}

// StockResponse representa o estoque de um produto em uma filial
type StockResponse struct {
	BranchID  string    `json:"branch_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Reserved  int       `json:"reserved"`
	Available int       `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockMovementResponse representa uma movimentação de estoque
type StockMovementResponse struct {
	ID               string    `json:"id"`
	BranchID         string    `json:"branch_id"`
	ProductID        string    `json:"product_id"`
	Type             string    `json:"type"`
	Quantity         int       `json:"quantity"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	ReferenceID      string    `json:"reference_id,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToStockLines converte as linhas da requisição para o domínio
func ToStockLines(lines []StockLineRequest) []product.StockLine {
	result := make([]product.StockLine, 0, len(lines))
	for _, line := range lines {
		result = append(result, product.StockLine{
			ProductID: line.ProductID,
			BranchID:  line.BranchID,
			Quantity:  line.Quantity,
		})
	}
	return result
}

// ToStockResponse converte um BranchStock para o formato de resposta
func ToStockResponse(s *product.BranchStock) StockResponse {
	return StockResponse{
		BranchID:  s.BranchID,
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		Reserved:  s.Reserved,
		Available: s.Available(),
		UpdatedAt: s.UpdatedAt,
	}
}

// ToStockListResponse converte uma lista de BranchStock
func ToStockListResponse(stocks []*product.BranchStock) []StockResponse {
	result := make([]StockResponse, 0, len(stocks))
	for _, s := range stocks {
		result = append(result, ToStockResponse(s))
	}
	return result
}

// ToStockMovementResponse converte um StockMovement para o formato de resposta
func ToStockMovementResponse(m *product.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:               m.ID,
		BranchID:         m.BranchID,
		ProductID:        m.ProductID,
		Type:             string(m.Type),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ReferenceID:      m.ReferenceID,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
	}
}

// ToStockMovementListResponse converte uma lista de StockMovement
func ToStockMovementListResponse(movements []*product.StockMovement) []StockMovementResponse {
	result := make([]StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		result = append(result, ToStockMovementResponse(m))
	}
	return result
}
