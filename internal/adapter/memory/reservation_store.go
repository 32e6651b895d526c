package memory

import (
	"context"
	"sort"
	"time"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/reservation"
)

// ReservationRepository implementa reservation.Repository em memória
type ReservationRepository struct {
	store *Store
}

// Create implementa reservation.Repository.Create
func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation, dep *reservation.Deposit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := counterKey(res.BranchID, res.CreatedAt)
	r.store.reservationCounters[key]++
	res.Number = r.store.reservationCounters[key]

	r.store.reservations[res.ID] = cloneReservation(res)

	if dep != nil {
		clone := *dep
		r.store.deposits[dep.ReservationID] = &clone
	}

	return nil
}

// FindByID implementa reservation.Repository.FindByID
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	res, ok := r.store.reservations[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}

	return cloneReservation(res), nil
}

// MarkCancelled implementa reservation.Repository.MarkCancelled
func (r *ReservationRepository) MarkCancelled(ctx context.Context, id, reason string) error {
	return r.transition(id, func(res *reservation.Reservation) {
		res.Status = reservation.StatusCancelled
		res.CancelReason = reason
	})
}

// MarkCompleted implementa reservation.Repository.MarkCompleted
func (r *ReservationRepository) MarkCompleted(ctx context.Context, id, saleID string) error {
	return r.transition(id, func(res *reservation.Reservation) {
		res.Status = reservation.StatusCompleted
		res.SaleID = saleID
	})
}

// MarkExpired implementa reservation.Repository.MarkExpired
func (r *ReservationRepository) MarkExpired(ctx context.Context, id string) error {
	return r.transition(id, func(res *reservation.Reservation) {
		res.Status = reservation.StatusExpired
	})
}

// transition aplica uma transição condicionada ao estado pendente
func (r *ReservationRepository) transition(id string, apply func(*reservation.Reservation)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	res, ok := r.store.reservations[id]
	if !ok {
		return reservation.ErrNotFound
	}

	if !res.IsPending() {
		return reservation.ErrInvalidState
	}

	apply(res)
	res.UpdatedAt = time.Now()
	return nil
}

// ListExpired implementa reservation.Repository.ListExpired
func (r *ReservationRepository) ListExpired(ctx context.Context, now time.Time) ([]*reservation.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var expired []*reservation.Reservation
	for _, res := range r.store.reservations {
		if res.IsPending() && res.ExpiryDate.Before(now) {
			expired = append(expired, cloneReservation(res))
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiryDate.Before(expired[j].ExpiryDate)
	})

	return expired, nil
}

// ListByBranch implementa reservation.Repository.ListByBranch
func (r *ReservationRepository) ListByBranch(ctx context.Context, branchID string, status reservation.Status, limit, offset int) ([]*reservation.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var reservations []*reservation.Reservation
	for _, res := range r.store.reservations {
		if res.BranchID != branchID {
			continue
		}
		if status != "" && res.Status != status {
			continue
		}
		reservations = append(reservations, cloneReservation(res))
	}

	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})

	return paginate(reservations, limit, offset), nil
}

// FindDeposit implementa reservation.Repository.FindDeposit
func (r *ReservationRepository) FindDeposit(ctx context.Context, reservationID string) (*reservation.Deposit, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	dep, ok := r.store.deposits[reservationID]
	if !ok {
		return nil, reservation.ErrDepositNotFound
	}

	clone := *dep
	return &clone, nil
}

// UpdateDepositStatus implementa reservation.Repository.UpdateDepositStatus
func (r *ReservationRepository) UpdateDepositStatus(ctx context.Context, reservationID string, status reservation.DepositStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	dep, ok := r.store.deposits[reservationID]
	if !ok {
		return reservation.ErrDepositNotFound
	}

	if dep.Status != reservation.DepositActive {
		return reservation.ErrInvalidState
	}

	dep.Status = status
	dep.UpdatedAt = time.Now()
	return nil
}
