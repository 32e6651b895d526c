package branch

import (
	"context"
)

// Repository define as operações de persistência de filiais
type Repository interface {
	// Create cria uma nova filial
	Create(ctx context.Context, b *Branch) error

	// FindByID busca uma filial pelo ID
	FindByID(ctx context.Context, id string) (*Branch, error)

	// List lista as filiais de um tenant com paginação
	List(ctx context.Context, tenantID string, limit, offset int) ([]*Branch, error)

	// UpdateStatus atualiza o status de uma filial
	UpdateStatus(ctx context.Context, id string, status Status) error
}
