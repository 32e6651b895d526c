package dto

import (
	"time"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/branch"
)

// BranchRequest representa a requisição de criação de filial
type BranchRequest struct {
	Name   string `json:"name" binding:"required"`
	Code   string `json:"code"`
	IsMain bool   `json:"is_main"`
}

// BranchResponse representa uma filial
type BranchResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	IsMain    bool      `json:"is_main"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToBranchResponse converte uma Branch para o formato de resposta
func ToBranchResponse(b *branch.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		TenantID:  b.TenantID,
		Name:      b.Name,
		Code:      b.Code,
		Status:    string(b.Status),
		IsMain:    b.IsMain,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ToBranchListResponse converte uma lista de Branch
func ToBranchListResponse(branches []*branch.Branch) []BranchResponse {
	result := make([]BranchResponse, 0, len(branches))
	for _, b := range branches {
		result = append(result, ToBranchResponse(b))
	}
	return result
}
