package tenant

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName     = errors.New("nome não pode ser vazio")
	ErrEmptyDocument = errors.New("documento não pode ser vazio")
	ErrNotFound      = errors.New("tenant não encontrado")
	ErrNotActive     = errors.New("tenant não está ativo")
)

// Status representa o estado do tenant
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Tenant representa uma rede de lojas no sistema multi-tenant. Cada
// tenant possui seu próprio schema no banco de dados.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Status    Status    `json:"status"`
	Schema    string    `json:"schema"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTenant cria um novo tenant ativo com schema derivado do ID
func NewTenant(name, document string) (*Tenant, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	if document == "" {
		return nil, ErrEmptyDocument
	}

	id := uuid.New().String()
	now := time.Now()

	return &Tenant{
		ID:        id,
		Name:      name,
		Document:  document,
		Status:    StatusActive,
		Schema:    "tenant_" + id[:8],
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive verifica se o tenant está ativo
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}
