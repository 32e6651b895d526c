package branch

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName     = errors.New("nome não pode ser vazio")
	ErrEmptyTenantID = errors.New("ID do tenant não pode ser vazio")
	ErrNotFound      = errors.New("filial não encontrada")
)

// Status representa o estado da filial
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Branch representa uma loja da rede. Estoque, sessões de caixa, vendas
// e reservas são sempre escopados por filial.
type Branch struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Status    Status    `json:"status"`
	IsMain    bool      `json:"is_main"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBranch cria uma nova filial ativa
func NewBranch(tenantID, name, code string, isMain bool) (*Branch, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}

	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	return &Branch{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      name,
		Code:      code,
		Status:    StatusActive,
		IsMain:    isMain,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive verifica se a filial está ativa
func (b *Branch) IsActive() bool {
	return b.Status == StatusActive
}
