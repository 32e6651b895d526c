package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
)

// PostgresMovementRepository implementa cashier.MovementRepository usando
// PostgreSQL. O lançamento e o incremento do saldo esperado compartilham a
// mesma transação, mantendo o contador consistente sob qualquer ordem de
// escrita concorrente.
type PostgresMovementRepository struct {
	db *database.PostgresDB
}

// NewPostgresMovementRepository cria uma nova instância de PostgresMovementRepository
func NewPostgresMovementRepository(db *database.PostgresDB) *PostgresMovementRepository {
	return &PostgresMovementRepository{
		db: db,
	}
}

// Append implementa cashier.MovementRepository.Append
func (r *PostgresMovementRepository) Append(ctx context.Context, m *cashier.Movement) error {
	return r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx,
			"SELECT status FROM cash_register_sessions WHERE id = $1",
			m.SessionID).Scan(&status)
		if err != nil {
			if err == pgx.ErrNoRows {
				return cashier.ErrSessionNotFound
			}
			return fmt.Errorf("falha ao buscar sessão: %w", err)
		}

		if cashier.Status(status) != cashier.StatusOpen {
			return cashier.ErrSessionClosed
		}

		if err := insertCashMovement(ctx, tx, m); err != nil {
			return err
		}

		if m.AffectsExpected() {
			_, err = tx.Exec(ctx, `
				UPDATE cash_register_sessions
				SET expected_amount = expected_amount + $1,
				    updated_at = NOW()
				WHERE id = $2
			`, m.Amount, m.SessionID)
			if err != nil {
				return fmt.Errorf("falha ao atualizar saldo esperado: %w", err)
			}
		}

		return nil
	})
}

// ListBySession implementa cashier.MovementRepository.ListBySession
func (r *PostgresMovementRepository) ListBySession(ctx context.Context, sessionID string) ([]*cashier.Movement, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	movements, err := listMovements(ctx, conn, sessionID)
	if err != nil {
		return nil, err
	}

	result := make([]*cashier.Movement, len(movements))
	for i := range movements {
		result[i] = &movements[i]
	}
	return result, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const movementSelect = `
	SELECT id, tenant_id, session_id, type, amount, reason,
	       COALESCE(reference_id, ''), created_at
	FROM cash_movements
	WHERE session_id = $1
	ORDER BY created_at ASC, id ASC
`

func listMovements(ctx context.Context, q queryer, sessionID string) ([]cashier.Movement, error) {
	rows, err := q.Query(ctx, movementSelect, sessionID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar movimentações: %w", err)
	}
	defer rows.Close()

	var movements []cashier.Movement
	for rows.Next() {
		var m cashier.Movement
		var movementType string
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.SessionID,
			&movementType,
			&m.Amount,
			&m.Reason,
			&m.ReferenceID,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("falha ao ler movimentação: %w", err)
		}
		m.Type = cashier.MovementType(movementType)
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return movements, nil
}

func listMovementsTx(ctx context.Context, tx pgx.Tx, sessionID string) ([]cashier.Movement, error) {
	return listMovements(ctx, tx, sessionID)
}

func insertCashMovement(ctx context.Context, tx pgx.Tx, m *cashier.Movement) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO cash_movements (
			id, tenant_id, session_id, type, amount, reason, reference_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
	`,
		m.ID,
		m.TenantID,
		m.SessionID,
		string(m.Type),
		m.Amount,
		m.Reason,
		m.ReferenceID,
		m.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("falha ao inserir movimentação de caixa: %w", err)
	}

	return nil
}
