package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/product"
)

// ProductRequest representa a requisição de criação de produto
type ProductRequest struct {
	SKU       string          `json:"sku" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Unit      string          `json:"unit"`
	SellPrice decimal.Decimal `json:"sell_price"`
}

// ProductResponse representa um produto
type ProductResponse struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToProductResponse converte um Product para o formato de resposta
func ToProductResponse(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Unit:      p.Unit,
		SellPrice: p.SellPrice,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
}

// ToProductListResponse converte uma lista de Product
func ToProductListResponse(products []*product.Product) []ProductResponse {
	result := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, ToProductResponse(p))
	}
	return result
}
