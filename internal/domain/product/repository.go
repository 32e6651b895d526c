package product

import (
	"context"
)

// Repository define as operações de persistência do catálogo de produtos.
// O CRUD completo de catálogo é responsabilidade de outro serviço; aqui
// existe apenas o necessário para o razão de estoque funcionar.
type Repository interface {
	// Create persiste um novo produto
	Create(ctx context.Context, p *Product) error

	// FindByID busca um produto pelo ID
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindBySKU busca um produto pelo SKU dentro do tenant
	FindBySKU(ctx context.Context, tenantID, sku string) (*Product, error)

	// ListByTenant retorna uma lista paginada de produtos de um tenant
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Product, error)
}

// StockRepository é o razão de estoque: único escritor dos campos
// quantity/reserved. Toda operação multi-linha executa como uma única
// transação atômica sobre todos os registros tocados; em caso de conflito
// de escrita concorrente a transação inteira é reexecutada.
type StockRepository interface {
	// Adjust altera o estoque físico de um produto em uma filial.
	// Falha com ErrInsufficientStock se quantity+delta < 0.
	Adjust(ctx context.Context, productID, branchID string, delta int, notes string) (*BranchStock, error)

	// BatchAdjust aplica vários ajustes como uma única unidade atômica,
	// tudo ou nada. Usado por baixa de venda e por pares débito/crédito
	// de transferência entre filiais.
	BatchAdjust(ctx context.Context, deltas []StockLine, referenceID string) error

	// Reserve incrementa o estoque reservado de todas as linhas, falhando
	// a chamada inteira com InsufficientStockError (nomeando cada linha
	// ofensora) se alguma linha tiver disponível < solicitado.
	Reserve(ctx context.Context, lines []StockLine, referenceID string) error

	// Release decrementa o estoque reservado, com piso em zero. Limpeza de
	// melhor esforço: nunca falha por falta de reserva.
	Release(ctx context.Context, lines []StockLine, referenceID string) error

	// Commit baixa estoque físico e reservado pela quantidade de cada
	// linha. Revalida o estoque físico mesmo após Reserve, protegendo
	// contra ajustes diretos concorrentes.
	Commit(ctx context.Context, lines []StockLine, referenceID string) error

	// FindStock busca o registro de estoque de um produto em uma filial
	FindStock(ctx context.Context, productID, branchID string) (*BranchStock, error)

	// ListStockByProduct retorna o estoque de um produto em todas as filiais
	ListStockByProduct(ctx context.Context, productID string) ([]*BranchStock, error)

	// ListMovements retorna o histórico de movimentações de um produto em
	// uma filial, da mais recente para a mais antiga
	ListMovements(ctx context.Context, productID, branchID string, limit, offset int) ([]*StockMovement, error)
}
