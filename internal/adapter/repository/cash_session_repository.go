package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
)

// PostgresSessionRepository implementa cashier.SessionRepository usando
// PostgreSQL. O índice único parcial sobre (tenant_id, branch_id) com
// status = 'open' sustenta a invariante de sessão única aberta mesmo sob
// aberturas concorrentes.
type PostgresSessionRepository struct {
	db *database.PostgresDB
}

// NewPostgresSessionRepository cria uma nova instância de PostgresSessionRepository
func NewPostgresSessionRepository(db *database.PostgresDB) *PostgresSessionRepository {
	return &PostgresSessionRepository{
		db: db,
	}
}

// Open implementa cashier.SessionRepository.Open
func (r *PostgresSessionRepository) Open(ctx context.Context, s *cashier.Session) error {
	return r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		// A leitura e a gravação compartilham a transação: o check-then-act
		// é livre de corrida, e o índice único parcial é a garantia final.
		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM cash_register_sessions
				WHERE tenant_id = $1 AND branch_id = $2 AND status = 'open'
			)
		`, s.TenantID, s.BranchID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("falha ao verificar sessão aberta: %w", err)
		}

		if exists {
			return cashier.ErrSessionAlreadyOpen
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO cash_register_sessions (
				id, tenant_id, branch_id, opened_by, status,
				initial_amount, expected_amount,
				total_sales, cash_sales, card_sales, digital_sales,
				open_time, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
			s.ID,
			s.TenantID,
			s.BranchID,
			s.OpenedBy,
			string(s.Status),
			s.InitialAmount,
			s.ExpectedAmount,
			s.TotalSales,
			s.CashSales,
			s.CardSales,
			s.DigitalSales,
			s.OpenTime,
			s.CreatedAt,
			s.UpdatedAt,
		)

		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
				return cashier.ErrSessionAlreadyOpen
			}
			return fmt.Errorf("falha ao inserir sessão de caixa: %w", err)
		}

		return nil
	})
}

// FindByID implementa cashier.SessionRepository.FindByID
func (r *PostgresSessionRepository) FindByID(ctx context.Context, id string) (*cashier.Session, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	return scanSession(conn.QueryRow(ctx, sessionSelect+" WHERE id = $1", id))
}

// FindOpenByBranch implementa cashier.SessionRepository.FindOpenByBranch
func (r *PostgresSessionRepository) FindOpenByBranch(ctx context.Context, branchID string) (*cashier.Session, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	return scanSession(conn.QueryRow(ctx,
		sessionSelect+" WHERE branch_id = $1 AND status = 'open'", branchID))
}

// Close implementa cashier.SessionRepository.Close
func (r *PostgresSessionRepository) Close(ctx context.Context, sessionID string, countedAmount decimal.Decimal, closeTime time.Time) (*cashier.Session, *cashier.ClosureReport, error) {
	var session *cashier.Session
	var report *cashier.ClosureReport

	err := r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		s, err := scanSession(tx.QueryRow(ctx, sessionSelect+" WHERE id = $1", sessionID))
		if err != nil {
			return err
		}

		if !s.IsOpen() {
			return cashier.ErrSessionClosed
		}

		difference := countedAmount.Sub(s.ExpectedAmount)

		_, err = tx.Exec(ctx, `
			UPDATE cash_register_sessions
			SET status = 'closed',
			    counted_amount = $1,
			    difference = $2,
			    close_time = $3,
			    updated_at = $4
			WHERE id = $5 AND status = 'open'
		`, countedAmount, difference, closeTime, time.Now(), sessionID)
		if err != nil {
			return fmt.Errorf("falha ao fechar sessão: %w", err)
		}

		movements, err := listMovementsTx(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		rep := &cashier.ClosureReport{
			ID:             uuid.New().String(),
			TenantID:       s.TenantID,
			SessionID:      s.ID,
			BranchID:       s.BranchID,
			OpenedBy:       s.OpenedBy,
			InitialAmount:  s.InitialAmount,
			ExpectedAmount: s.ExpectedAmount,
			CountedAmount:  countedAmount,
			Difference:     difference,
			TotalSales:     s.TotalSales,
			CashSales:      s.CashSales,
			CardSales:      s.CardSales,
			DigitalSales:   s.DigitalSales,
			OpenTime:       s.OpenTime,
			CloseTime:      closeTime,
			Movements:      movements,
			CreatedAt:      time.Now(),
		}

		movementsJSON, err := json.Marshal(rep.Movements)
		if err != nil {
			return fmt.Errorf("falha ao serializar movimentações: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO cash_closure_reports (
				id, tenant_id, session_id, branch_id, opened_by,
				initial_amount, expected_amount, counted_amount, difference,
				total_sales, cash_sales, card_sales, digital_sales,
				open_time, close_time, movements, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`,
			rep.ID,
			rep.TenantID,
			rep.SessionID,
			rep.BranchID,
			rep.OpenedBy,
			rep.InitialAmount,
			rep.ExpectedAmount,
			rep.CountedAmount,
			rep.Difference,
			rep.TotalSales,
			rep.CashSales,
			rep.CardSales,
			rep.DigitalSales,
			rep.OpenTime,
			rep.CloseTime,
			movementsJSON,
			rep.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("falha ao gravar relatório de fechamento: %w", err)
		}

		s.Status = cashier.StatusClosed
		s.CountedAmount = &countedAmount
		s.Difference = &difference
		s.CloseTime = &closeTime

		session = s
		report = rep
		return nil
	})

	if err != nil {
		return nil, nil, err
	}

	return session, report, nil
}

// FindReport implementa cashier.SessionRepository.FindReport
func (r *PostgresSessionRepository) FindReport(ctx context.Context, sessionID string) (*cashier.ClosureReport, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	rep := &cashier.ClosureReport{}
	var movementsJSON []byte

	err = conn.QueryRow(ctx, `
		SELECT id, tenant_id, session_id, branch_id, opened_by,
		       initial_amount, expected_amount, counted_amount, difference,
		       total_sales, cash_sales, card_sales, digital_sales,
		       open_time, close_time, movements, created_at
		FROM cash_closure_reports
		WHERE session_id = $1
	`, sessionID).Scan(
		&rep.ID,
		&rep.TenantID,
		&rep.SessionID,
		&rep.BranchID,
		&rep.OpenedBy,
		&rep.InitialAmount,
		&rep.ExpectedAmount,
		&rep.CountedAmount,
		&rep.Difference,
		&rep.TotalSales,
		&rep.CashSales,
		&rep.CardSales,
		&rep.DigitalSales,
		&rep.OpenTime,
		&rep.CloseTime,
		&movementsJSON,
		&rep.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cashier.ErrReportNotFound
		}
		return nil, fmt.Errorf("falha ao buscar relatório: %w", err)
	}

	if err := json.Unmarshal(movementsJSON, &rep.Movements); err != nil {
		return nil, fmt.Errorf("falha ao desserializar movimentações: %w", err)
	}

	return rep, nil
}

// ListByBranch implementa cashier.SessionRepository.ListByBranch
func (r *PostgresSessionRepository) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*cashier.Session, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		sessionSelect+" WHERE branch_id = $1 ORDER BY open_time DESC LIMIT $2 OFFSET $3",
		branchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar sessões: %w", err)
	}
	defer rows.Close()

	var sessions []*cashier.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return sessions, nil
}

const sessionSelect = `
	SELECT id, tenant_id, branch_id, opened_by, status,
	       initial_amount, expected_amount, counted_amount, difference,
	       total_sales, cash_sales, card_sales, digital_sales,
	       open_time, close_time, created_at, updated_at
	FROM cash_register_sessions
`

func scanSession(row pgx.Row) (*cashier.Session, error) {
	s := &cashier.Session{}
	var status string

	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.BranchID,
		&s.OpenedBy,
		&status,
		&s.InitialAmount,
		&s.ExpectedAmount,
		&s.CountedAmount,
		&s.Difference,
		&s.TotalSales,
		&s.CashSales,
		&s.CardSales,
		&s.DigitalSales,
		&s.OpenTime,
		&s.CloseTime,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cashier.ErrSessionNotFound
		}
		return nil, fmt.Errorf("falha ao buscar sessão: %w", err)
	}

	s.Status = cashier.Status(status)
	return s, nil
}
