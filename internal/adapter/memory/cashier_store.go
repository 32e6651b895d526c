package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
)

// SessionRepository implementa cashier.SessionRepository em memória
type SessionRepository struct {
	store *Store
}

// Open implementa cashier.SessionRepository.Open. A verificação de sessão já
// aberta e a gravação acontecem sob o mesmo mutex; Opens concorrentes sobre
// a mesma filial resultam em exatamente um sucesso.
func (r *SessionRepository) Open(ctx context.Context, s *cashier.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.sessions {
		if existing.TenantID == s.TenantID && existing.BranchID == s.BranchID && existing.IsOpen() {
			return cashier.ErrSessionAlreadyOpen
		}
	}

	r.store.sessions[s.ID] = cloneSession(s)
	return nil
}

// FindByID implementa cashier.SessionRepository.FindByID
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*cashier.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sessions[id]
	if !ok {
		return nil, cashier.ErrSessionNotFound
	}

	return cloneSession(s), nil
}

// FindOpenByBranch implementa cashier.SessionRepository.FindOpenByBranch
func (r *SessionRepository) FindOpenByBranch(ctx context.Context, branchID string) (*cashier.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, s := range r.store.sessions {
		if s.BranchID == branchID && s.IsOpen() {
			return cloneSession(s), nil
		}
	}

	return nil, cashier.ErrSessionNotFound
}

// Close implementa cashier.SessionRepository.Close
func (r *SessionRepository) Close(ctx context.Context, sessionID string, countedAmount decimal.Decimal, closeTime time.Time) (*cashier.Session, *cashier.ClosureReport, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sessions[sessionID]
	if !ok {
		return nil, nil, cashier.ErrSessionNotFound
	}

	if !s.IsOpen() {
		return nil, nil, cashier.ErrSessionClosed
	}

	difference := countedAmount.Sub(s.ExpectedAmount)

	s.Status = cashier.StatusClosed
	s.CountedAmount = &countedAmount
	s.Difference = &difference
	s.CloseTime = &closeTime
	s.UpdatedAt = time.Now()

	var movements []cashier.Movement
	for _, m := range r.store.cashMovements {
		if m.SessionID == sessionID {
			movements = append(movements, m)
		}
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

	r.store.reports[sessionID] = rep

	return cloneSession(s), cloneReport(rep), nil
}

// FindReport implementa cashier.SessionRepository.FindReport
func (r *SessionRepository) FindReport(ctx context.Context, sessionID string) (*cashier.ClosureReport, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rep, ok := r.store.reports[sessionID]
	if !ok {
		return nil, cashier.ErrReportNotFound
	}

	return cloneReport(rep), nil
}

// ListByBranch implementa cashier.SessionRepository.ListByBranch
func (r *SessionRepository) ListByBranch(ctx context.Context, branchID string, limit, offset int) ([]*cashier.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var sessions []*cashier.Session
	for _, s := range r.store.sessions {
		if s.BranchID == branchID {
			sessions = append(sessions, cloneSession(s))
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].OpenTime.After(sessions[j].OpenTime)
	})

	return paginate(sessions, limit, offset), nil
}

// MovementRepository implementa cashier.MovementRepository em memória
type MovementRepository struct {
	store *Store
}

// Append implementa cashier.MovementRepository.Append. O lançamento e o
// incremento do saldo esperado acontecem sob o mesmo mutex.
func (r *MovementRepository) Append(ctx context.Context, m *cashier.Movement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sessions[m.SessionID]
	if !ok {
		return cashier.ErrSessionNotFound
	}

	if !s.IsOpen() {
		return cashier.ErrSessionClosed
	}

	r.store.cashMovements = append(r.store.cashMovements, *m)

	if m.AffectsExpected() {
		s.ExpectedAmount = s.ExpectedAmount.Add(m.Amount)
		s.UpdatedAt = time.Now()
	}

	return nil
}

// ListBySession implementa cashier.MovementRepository.ListBySession
func (r *MovementRepository) ListBySession(ctx context.Context, sessionID string) ([]*cashier.Movement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var movements []*cashier.Movement
	for i := range r.store.cashMovements {
		if r.store.cashMovements[i].SessionID == sessionID {
			m := r.store.cashMovements[i]
			movements = append(movements, &m)
		}
	}

	return movements, nil
}
