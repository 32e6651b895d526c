package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pdv-multiloja/internal/domain/reservation"
)

// ReservationItemRequest representa uma linha da reserva
type ReservationItemRequest struct {
	ProductID   string          `json:"product_id" binding:"required"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ReservationRequest representa a requisição de criação de reserva
type ReservationRequest struct {
	CustomerName  string                   `json:"customer_name" binding:"required"`
	CustomerPhone string                   `json:"customer_phone"`
	Items         []ReservationItemRequest `json:"items" binding:"required"`
	ExpiryDate    time.Time                `json:"expiry_date" binding:"required"`
	DepositAmount decimal.Decimal          `json:"deposit_amount"`
}

// CancelReservationRequest representa a requisição de cancelamento
type CancelReservationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CompleteReservationRequest representa a requisição de conclusão
type CompleteReservationRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// ReservationItemResponse representa uma linha da reserva na resposta
type ReservationItemResponse struct {
	ProductID   string          `json:"product_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ReservationResponse representa uma reserva
type ReservationResponse struct {
	ID            string                    `json:"id"`
	BranchID      string                    `json:"branch_id"`
	Number        int                       `json:"number"`
	CustomerName  string                    `json:"customer_name"`
	CustomerPhone string                    `json:"customer_phone,omitempty"`
	Items         []ReservationItemResponse `json:"items"`
	Status        string                    `json:"status"`
	ExpiryDate    time.Time                 `json:"expiry_date"`
	DepositAmount decimal.Decimal           `json:"deposit_amount"`
	SaleID        string                    `json:"sale_id,omitempty"`
	CancelReason  string                    `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// DepositResponse representa o sinal de uma reserva
type DepositResponse struct {
	ID            string          `json:"id"`
	ReservationID string          `json:"reservation_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToReservationItems converte os itens da requisição para o domínio
func ToReservationItems(items []ReservationItemRequest) []reservation.Item {
	result := make([]reservation.Item, 0, len(items))
	for _, item := range items {
		result = append(result, reservation.Item{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return result
}

// ToReservationResponse converte uma Reservation para o formato de resposta
func ToReservationResponse(r *reservation.Reservation) ReservationResponse {
	items := make([]ReservationItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, ReservationItemResponse{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	return ReservationResponse{
		ID:            r.ID,
		BranchID:      r.BranchID,
		Number:        r.Number,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Items:         items,
		Status:        string(r.Status),
		ExpiryDate:    r.ExpiryDate,
		DepositAmount: r.DepositAmount,
		SaleID:        r.SaleID,
		CancelReason:  r.CancelReason,
		CreatedAt:     r.CreatedAt,
	}
}

// ToReservationListResponse converte uma lista de Reservation
func ToReservationListResponse(reservations []*reservation.Reservation) []ReservationResponse {
	result := make([]ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		result = append(result, ToReservationResponse(r))
	}
	return result
}

// ToDepositResponse converte um Deposit para o formato de resposta
func ToDepositResponse(d *reservation.Deposit) DepositResponse {
	return DepositResponse{
		ID:            d.ID,
		ReservationID: d.ReservationID,
		Amount:        d.Amount,
		Status:        string(d.Status),
		CreatedAt:     d.CreatedAt,
	}
}
