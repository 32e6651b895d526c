package sale

import (
	"context"
)

// Repository define as operações de persistência de vendas.
type Repository interface {
	// Create persiste a venda e dá baixa no estoque de cada item como uma
	// única transação atômica: se qualquer linha ficar negativa a
	// transação inteira falha com InsufficientStockError e nenhuma venda
	// parcial é gravada. Quando SessionID está preenchido, a atualização
	// dos contadores da sessão e o lançamento descritivo de caixa entram
	// na mesma transação. Atribui o número sequencial da venda.
	//
	// Vendas com ReservationID preenchido não dão baixa de estoque: o
	// estoque foi reservado na criação da reserva e a baixa acontece no
	// Commit do razão de estoque disparado pela conclusão da reserva.
	Create(ctx context.Context, s *Sale) error

	// FindByID busca uma venda pelo ID
	FindByID(ctx context.Context, id string) (*Sale, error)

	// ListByBranch retorna as vendas de uma filial, da mais recente para a
	// mais antiga
	ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*Sale, error)
}
