package tenant

import (
	"context"
)

// Repository define as operações de persistência de tenants
type Repository interface {
	// Create cria um novo tenant
	Create(ctx context.Context, t *Tenant) error

	// FindByID busca um tenant pelo ID
	FindByID(ctx context.Context, id string) (*Tenant, error)

	// FindByDocument busca um tenant pelo documento
	FindByDocument(ctx context.Context, document string) (*Tenant, error)

	// List lista tenants com paginação
	List(ctx context.Context, limit, offset int) ([]*Tenant, error)

	// UpdateStatus atualiza o status de um tenant
	UpdateStatus(ctx context.Context, id string, status Status) error
}
