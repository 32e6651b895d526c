package dto

import (
	"time"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/tenant"
)

// TenantRequest representa a requisição de criação de tenant
type TenantRequest struct {
	Name     string `json:"name" binding:"required"`
	Document string `json:"document" binding:"required"`
}

// TenantResponse representa um tenant
type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Status    string    `json:"status"`
	Schema    string    `json:"schema"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToTenantResponse converte um Tenant para o formato de resposta
func ToTenantResponse(t *tenant.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Document:  t.Document,
		Status:    string(t.Status),
		Schema:    t.Schema,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ToTenantListResponse converte uma lista de Tenant
func ToTenantListResponse(tenants []*tenant.Tenant) []TenantResponse {
	result := make([]TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		result = append(result, ToTenantResponse(t))
	}
	return result
}
