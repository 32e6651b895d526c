package repository

import (
	"context"
	"errors"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/tenant"
	pkgtenant "github.com/hugohenrick/pdv-multiloja/pkg/tenant"
)

// TenantValidator valida tenants consultando o repositório
type TenantValidator struct {
	repository tenant.Repository
}

// NewTenantValidator cria uma nova instância de TenantValidator
func NewTenantValidator(repository tenant.Repository) pkgtenant.TenantValidator {
	return &TenantValidator{
		repository: repository,
	}
}

// ValidateTenant verifica se um tenant existe e está ativo
func (v *TenantValidator) ValidateTenant(tenantID string) (bool, error) {
	t, err := v.repository.FindByID(context.Background(), tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return t.IsActive(), nil
}
