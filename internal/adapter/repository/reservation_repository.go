package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/reservation"
	"github.com/hugohenrick/pdv-multiloja/internal/infrastructure/database"
)

// PostgresReservationRepository implementa reservation.Repository usando
// PostgreSQL. O número do dia vem de um contador atômico por
// (filial, dia), incrementado na mesma transação da gravação: dois
// Creates concorrentes na mesma filial nunca recebem o mesmo número.
type PostgresReservationRepository struct {
	db *database.PostgresDB
}

// NewPostgresReservationRepository cria uma nova instância de PostgresReservationRepository
func NewPostgresReservationRepository(db *database.PostgresDB) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

// Create implementa reservation.Repository.Create
func (r *PostgresReservationRepository) Create(ctx context.Context, res *reservation.Reservation, dep *reservation.Deposit) error {
	return r.db.TransactionWithRetry(ctx, func(tx pgx.Tx) error {
		day := res.CreatedAt.UTC().Truncate(24 * time.Hour)
		err := tx.QueryRow(ctx, `
			INSERT INTO reservation_counters (branch_id, day, last_number)
			VALUES ($1, $2, 1)
			ON CONFLICT (branch_id, day)
			DO UPDATE SET last_number = reservation_counters.last_number + 1
			RETURNING last_number
		`, res.BranchID, day).Scan(&res.Number)
		if err != nil {
			return fmt.Errorf("falha ao gerar número da reserva: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reservations (
				id, tenant_id, branch_id, number, customer_name, customer_phone,
				status, expiry_date, deposit_amount, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			res.ID,
			res.TenantID,
			res.BranchID,
			res.Number,
			res.CustomerName,
			res.CustomerPhone,
			string(res.Status),
			res.ExpiryDate,
			res.DepositAmount,
			res.CreatedAt,
			res.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("falha ao inserir reserva: %w", err)
		}

		for _, item := range res.Items {
			_, err = tx.Exec(ctx, `
				INSERT INTO reservation_items (
					id, reservation_id, product_id, description, quantity, unit_price
				) VALUES ($1, $2, $3, $4, $5, $6)
			`,
				uuid.New().String(),
				res.ID,
				item.ProductID,
				item.Description,
				item.Quantity,
				item.UnitPrice,
			)
			if err != nil {
				return fmt.Errorf("falha ao inserir item da reserva: %w", err)
			}
		}

		if dep != nil {
			_, err = tx.Exec(ctx, `
				INSERT INTO reservation_deposits (
					id, tenant_id, reservation_id, amount, status, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7)
			`,
				dep.ID,
				dep.TenantID,
				dep.ReservationID,
				dep.Amount,
				string(dep.Status),
				dep.CreatedAt,
				dep.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("falha ao inserir sinal da reserva: %w", err)
			}
		}

		return nil
	})
}

// FindByID implementa reservation.Repository.FindByID
func (r *PostgresReservationRepository) FindByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	res, err := scanReservation(conn.QueryRow(ctx, reservationSelect+" WHERE id = $1", id))
	if err != nil {
		return nil, err
	}

	items, err := listReservationItems(ctx, conn, res.ID)
	if err != nil {
		return nil, err
	}
	res.Items = items

	return res, nil
}

// MarkCancelled implementa reservation.Repository.MarkCancelled
func (r *PostgresReservationRepository) MarkCancelled(ctx context.Context, id, reason string) error {
	return r.transition(ctx, id, `
		UPDATE reservations
		SET status = 'cancelled', cancel_reason = $1, updated_at = $2
		WHERE id = $3 AND status = 'pending'
	`, reason, time.Now(), id)
}

// MarkCompleted implementa reservation.Repository.MarkCompleted
func (r *PostgresReservationRepository) MarkCompleted(ctx context.Context, id, saleID string) error {
	return r.transition(ctx, id, `
		UPDATE reservations
		SET status = 'completed', sale_id = $1, updated_at = $2
		WHERE id = $3 AND status = 'pending'
	`, saleID, time.Now(), id)
}

// MarkExpired implementa reservation.Repository.MarkExpired
func (r *PostgresReservationRepository) MarkExpired(ctx context.Context, id string) error {
	return r.transition(ctx, id, `
		UPDATE reservations
		SET status = 'expired', updated_at = $1
		WHERE id = $2 AND status = 'pending'
	`, time.Now(), id)
}

// transition executa uma transição condicionada ao estado pendente. Zero
// linhas afetadas significa reserva inexistente ou já finalizada.
func (r *PostgresReservationRepository) transition(ctx context.Context, id, query string, args ...interface{}) error {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	result, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("falha ao atualizar reserva: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := conn.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)", id).Scan(&exists); err != nil {
			return fmt.Errorf("falha ao verificar reserva: %w", err)
		}
		if !exists {
			return reservation.ErrNotFound
		}
		return reservation.ErrInvalidState
	}

	return nil
}

// ListExpired implementa reservation.Repository.ListExpired
func (r *PostgresReservationRepository) ListExpired(ctx context.Context, now time.Time) ([]*reservation.Reservation, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		reservationSelect+" WHERE status = 'pending' AND expiry_date < $1 ORDER BY expiry_date", now)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar reservas expiradas: %w", err)
	}
	defer rows.Close()

	reservations, err := collectReservations(rows)
	if err != nil {
		return nil, err
	}

	for _, res := range reservations {
		items, err := listReservationItems(ctx, conn, res.ID)
		if err != nil {
			return nil, err
		}
		res.Items = items
	}

	return reservations, nil
}

// ListByBranch implementa reservation.Repository.ListByBranch
func (r *PostgresReservationRepository) ListByBranch(ctx context.Context, branchID string, status reservation.Status, limit, offset int) ([]*reservation.Reservation, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	query := reservationSelect + " WHERE branch_id = $1"
	args := []interface{}{branchID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, string(status))
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar reservas: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// FindDeposit implementa reservation.Repository.FindDeposit
func (r *PostgresReservationRepository) FindDeposit(ctx context.Context, reservationID string) (*reservation.Deposit, error) {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	dep := &reservation.Deposit{}
	var status string

	err = conn.QueryRow(ctx, `
		SELECT id, tenant_id, reservation_id, amount, status, created_at, updated_at
		FROM reservation_deposits
		WHERE reservation_id = $1
	`, reservationID).Scan(
		&dep.ID,
		&dep.TenantID,
		&dep.ReservationID,
		&dep.Amount,
		&status,
		&dep.CreatedAt,
		&dep.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reservation.ErrDepositNotFound
		}
		return nil, fmt.Errorf("falha ao buscar sinal: %w", err)
	}

	dep.Status = reservation.DepositStatus(status)
	return dep, nil
}

// UpdateDepositStatus implementa reservation.Repository.UpdateDepositStatus
func (r *PostgresReservationRepository) UpdateDepositStatus(ctx context.Context, reservationID string, status reservation.DepositStatus) error {
	conn, err := r.db.GetTenantConnection(ctx)
	if err != nil {
		return fmt.Errorf("falha ao obter conexão: %w", err)
	}
	defer conn.Release()

	result, err := conn.Exec(ctx, `
		UPDATE reservation_deposits
		SET status = $1, updated_at = $2
		WHERE reservation_id = $3 AND status = 'active'
	`, string(status), time.Now(), reservationID)
	if err != nil {
		return fmt.Errorf("falha ao atualizar sinal: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := conn.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM reservation_deposits WHERE reservation_id = $1)",
			reservationID).Scan(&exists); err != nil {
			return fmt.Errorf("falha ao verificar sinal: %w", err)
		}
		if !exists {
			return reservation.ErrDepositNotFound
		}
		return reservation.ErrInvalidState
	}

	return nil
}

const reservationSelect = `
	SELECT id, tenant_id, branch_id, number, customer_name, customer_phone,
	       status, expiry_date, deposit_amount, COALESCE(sale_id, ''),
	       COALESCE(cancel_reason, ''), created_at, updated_at
	FROM reservations
`

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	res := &reservation.Reservation{}
	var status string

	err := row.Scan(
		&res.ID,
		&res.TenantID,
		&res.BranchID,
		&res.Number,
		&res.CustomerName,
		&res.CustomerPhone,
		&status,
		&res.ExpiryDate,
		&res.DepositAmount,
		&res.SaleID,
		&res.CancelReason,
		&res.CreatedAt,
		&res.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reservation.ErrNotFound
		}
		return nil, fmt.Errorf("falha ao buscar reserva: %w", err)
	}

	res.Status = reservation.Status(status)
	return res, nil
}

func collectReservations(rows pgx.Rows) ([]*reservation.Reservation, error) {
	var reservations []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return reservations, nil
}

func listReservationItems(ctx context.Context, q queryer, reservationID string) ([]reservation.Item, error) {
	rows, err := q.Query(ctx, `
		SELECT product_id, description, quantity, unit_price
		FROM reservation_items
		WHERE reservation_id = $1
		ORDER BY description
	`, reservationID)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar itens da reserva: %w", err)
	}
	defer rows.Close()

	var items []reservation.Item
	for rows.Next() {
		var item reservation.Item
		if err := rows.Scan(
			&item.ProductID,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("falha ao ler item da reserva: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar resultados: %w", err)
	}

	return items, nil
}
