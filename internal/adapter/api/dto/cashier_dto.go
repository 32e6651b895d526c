package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/cashier"
)

// OpenSessionRequest representa a requisição de abertura de sessão de caixa
type OpenSessionRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount"`
}

// CloseSessionRequest representa a requisição de fechamento de sessão
type CloseSessionRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount"`
}

// CashMovementRequest representa a requisição de movimentação manual de
// caixa. O sinal do valor determina o tipo: positivo é suprimento, negativo
// é sangria.
type CashMovementRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" binding:"required"`
}

// SessionResponse representa uma sessão de caixa
type SessionResponse struct {
	ID             string           `json:"id"`
	BranchID       string           `json:"branch_id"`
	OpenedBy       string           `json:"opened_by"`
	Status         string           `json:"status"`
	InitialAmount  decimal.Decimal  `json:"initial_amount"`
	ExpectedAmount decimal.Decimal  `json:"expected_amount"`
	CountedAmount  *decimal.Decimal `json:"counted_amount,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	TotalSales     decimal.Decimal  `json:"total_sales"`
	CashSales      decimal.Decimal  `json:"cash_sales"`
	CardSales      decimal.Decimal  `json:"card_sales"`
	DigitalSales   decimal.Decimal  `json:"digital_sales"`
	OpenTime       time.Time        `json:"open_time"`
	CloseTime      *time.Time       `json:"close_time,omitempty"`
}

// CashMovementResponse representa uma movimentação de caixa
type CashMovementResponse struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	ReferenceID string          `json:"reference_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ClosureReportResponse representa o relatório de fechamento de uma sessão
type ClosureReportResponse struct {
	ID             string                 `json:"id"`
	SessionID      string                 `json:"session_id"`
	BranchID       string                 `json:"branch_id"`
	OpenedBy       string                 `json:"opened_by"`
	InitialAmount  decimal.Decimal        `json:"initial_amount"`
	ExpectedAmount decimal.Decimal        `json:"expected_amount"`
	CountedAmount  decimal.Decimal        `json:"counted_amount"`
	Difference     decimal.Decimal        `json:"difference"`
	TotalSales     decimal.Decimal        `json:"total_sales"`
	CashSales      decimal.Decimal        `json:"cash_sales"`
	CardSales      decimal.Decimal        `json:"card_sales"`
	DigitalSales   decimal.Decimal        `json:"digital_sales"`
	OpenTime       time.Time              `json:"open_time"`
	CloseTime      time.Time              `json:"close_time"`
	Movements      []CashMovementResponse `json:"movements"`
}

// ToSessionResponse converte uma Session para o formato de resposta
func ToSessionResponse(s *cashier.Session) SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		BranchID:       s.BranchID,
		OpenedBy:       s.OpenedBy,
		Status:         string(s.Status),
		InitialAmount:  s.InitialAmount,
		ExpectedAmount: s.ExpectedAmount,
		CountedAmount:  s.CountedAmount,
		Difference:     s.Difference,
		TotalSales:     s.TotalSales,
		CashSales:      s.CashSales,
		CardSales:      s.CardSales,
		DigitalSales:   s.DigitalSales,
		OpenTime:       s.OpenTime,
		CloseTime:      s.CloseTime,
	}
}

// ToSessionListResponse converte uma lista de Session
func ToSessionListResponse(sessions []*cashier.Session) []SessionResponse {
	result := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, ToSessionResponse(s))
	}
	return result
}

// ToCashMovementResponse converte um Movement para o formato de resposta
func ToCashMovementResponse(m *cashier.Movement) CashMovementResponse {
	return CashMovementResponse{
		ID:          m.ID,
		SessionID:   m.SessionID,
		Type:        string(m.Type),
		Amount:      m.Amount,
		Reason:      m.Reason,
		ReferenceID: m.ReferenceID,
		CreatedAt:   m.CreatedAt,
	}
}

// ToCashMovementListResponse converte uma lista de Movement
func ToCashMovementListResponse(movements []*cashier.Movement) []CashMovementResponse {
	result := make([]CashMovementResponse, 0, len(movements))
	for _, m := range movements {
		result = append(result, ToCashMovementResponse(m))
	}
	return result
}

// ToClosureReportResponse converte um ClosureReport para o formato de resposta
func ToClosureReportResponse(r *cashier.ClosureReport) ClosureReportResponse {
	movements := make([]CashMovementResponse, 0, len(r.Movements))
	for i := range r.Movements {
		movements = append(movements, ToCashMovementResponse(&r.Movements[i]))
	}

	return ClosureReportResponse{
		ID:             r.ID,
		SessionID:      r.SessionID,
		BranchID:       r.BranchID,
		OpenedBy:       r.OpenedBy,
		InitialAmount:  r.InitialAmount,
		ExpectedAmount: r.ExpectedAmount,
		CountedAmount:  r.CountedAmount,
		Difference:     r.Difference,
		TotalSales:     r.TotalSales,
		CashSales:      r.CashSales,
		CardSales:      r.CardSales,
		DigitalSales:   r.DigitalSales,
		OpenTime:       r.OpenTime,
		CloseTime:      r.CloseTime,
		Movements:      movements,
	}
}
