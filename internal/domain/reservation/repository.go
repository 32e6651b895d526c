package reservation

import (
	"context"
	"time"
)

// Repository define as operações de persistência de reservas e sinais.
// As transições de estado são condicionadas ao estado pendente no próprio
// comando de escrita; uma transição sobre reserva já finalizada devolve
// ErrInvalidState.
type Repository interface {
	// Create persiste a reserva (e o sinal, quando presente) em uma única
	// transação, atribuindo o número sequencial do dia via contador
	// atômico por (filial, dia).
	Create(ctx context.Context, r *Reservation, d *Deposit) error

	// FindByID busca uma reserva pelo ID
	FindByID(ctx context.Context, id string) (*Reservation, error)

	// MarkCancelled transiciona pending -> cancelled
	MarkCancelled(ctx context.Context, id, reason string) error

	// MarkCompleted transiciona pending -> completed, registrando a venda
	// vinculada
	MarkCompleted(ctx context.Context, id, saleID string) error

	// MarkExpired transiciona pending -> expired
	MarkExpired(ctx context.Context, id string) error

	// ListExpired retorna as reservas pendentes com expiração anterior ao
	// instante informado
	ListExpired(ctx context.Context, now time.Time) ([]*Reservation, error)

	// ListByBranch retorna as reservas de uma filial, opcionalmente
	// filtradas por status
	ListByBranch(ctx context.Context, branchID string, status Status, limit, offset int) ([]*Reservation, error)

	// FindDeposit busca o sinal de uma reserva
	FindDeposit(ctx context.Context, reservationID string) (*Deposit, error)

	// UpdateDepositStatus transiciona o estado do sinal de uma reserva
	UpdateDepositStatus(ctx context.Context, reservationID string, status DepositStatus) error
}
