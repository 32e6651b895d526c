package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/sale"
)

// SaleItemRequest representa uma linha da venda
type SaleItemRequest struct {
	ProductID   string          `json:"product_id" binding:"required"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// SaleRequest representa a requisição de registro de venda
type SaleRequest struct {
	Items         []SaleItemRequest `json:"items" binding:"required"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
}

// SaleItemResponse representa uma linha da venda na resposta
type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse representa uma venda
type SaleResponse struct {
	ID            string             `json:"id"`
	BranchID      string             `json:"branch_id"`
	SessionID     string             `json:"session_id,omitempty"`
	ReservationID string             `json:"reservation_id,omitempty"`
	Number        int                `json:"number"`
	Items         []SaleItemResponse `json:"items"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ToSaleItems converte os itens da requisição para o domínio
func ToSaleItems(items []SaleItemRequest) []sale.Item {
	result := make([]sale.Item, 0, len(items))
	for _, item := range items {
		result = append(result, sale.Item{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return result
}

// ToSaleResponse converte uma Sale para o formato de resposta
func ToSaleResponse(s *sale.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItemResponse{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}

	return SaleResponse{
		ID:            s.ID,
		BranchID:      s.BranchID,
		SessionID:     s.SessionID,
		ReservationID: s.ReservationID,
		Number:        s.Number,
		Items:         items,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		CreatedAt:     s.CreatedAt,
	}
}

// ToSaleListResponse converte uma lista de Sale
func ToSaleListResponse(sales []*sale.Sale) []SaleResponse {
	result := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		result = append(result, ToSaleResponse(s))
	}
	return result
}
