package cashier

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SessionRepository define as operações de persistência do ciclo de vida
// das sessões de caixa. É o único escritor dos campos de status e
// contadores da sessão.
type SessionRepository interface {
	// Open persiste uma nova sessão. A verificação de sessão já aberta e a
	// gravação compartilham a mesma transação; Opens concorrentes sobre a
	// mesma filial resultam em exatamente um sucesso e os demais recebem
	// ErrSessionAlreadyOpen.
	Open(ctx context.Context, s *Session) error

	// FindByID busca uma sessão pelo ID
	FindByID(ctx context.Context, id string) (*Session, error)

	// FindOpenByBranch resolve a sessão aberta de uma filial filtrando
	// diretamente por status; a fonte autoritativa é o próprio registro.
	FindOpenByBranch(ctx context.Context, branchID string) (*Session, error)

	// Close fecha a sessão: calcula a diferença entre o valor conferido e
	// o esperado, congela o registro e grava o relatório de fechamento
	// imutável na mesma transação.
	Close(ctx context.Context, sessionID string, countedAmount decimal.Decimal, closeTime time.Time) (*Session, *ClosureReport, error)

	// FindReport busca o relatório de fechamento de uma sessão
	FindReport(ctx context.Context, sessionID string) (*ClosureReport, error)

	// ListByBranch retorna as sessões de uma filial, da mais recente para
	// a mais antiga
	ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*Session, error)
}

// MovementRepository define o razão de movimentações de caixa. É o único
// escritor dos incrementos de saldo esperado da sessão.
type MovementRepository interface {
	// Append insere a movimentação e incrementa o saldo esperado da sessão
	// na mesma transação. Falha com ErrSessionClosed se a sessão não
	// estiver aberta.
	Append(ctx context.Context, m *Movement) error

	// ListBySession retorna todas as movimentações de uma sessão em ordem
	// de criação, para conciliação e auditoria
	ListBySession(ctx context.Context, sessionID string) ([]*Movement, error)
}
